package mockapi

import (
	"net/http"
	"path"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pulsepr/storefront/internal/core/domain"
)

type ordersBody struct {
	Orders []domain.Order `json:"orders"`
}

type designsBody struct {
	Designs []domain.CustomDesign `json:"designs"`
}

type designBody struct {
	Design *domain.CustomDesign `json:"design"`
}

// uploadURL names a stored upload; the bytes themselves are discarded.
func uploadURL(dir, filename string) string {
	return "/uploads/" + dir + "/" + uuid.NewString() + path.Ext(filename)
}

func (s *Server) myOrders(c echo.Context) error {
	uid := userID(c)
	s.store.mu.Lock()
	out := make([]domain.Order, 0)
	for _, o := range s.store.orders {
		if o.UserID == uid {
			out = append(out, o)
		}
	}
	s.store.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return c.JSON(http.StatusOK, ordersBody{Orders: out})
}

func (s *Server) uploadDesign(c echo.Context) error {
	fh, err := c.FormFile("design")
	if err != nil {
		return fail(http.StatusBadRequest, "Design file is required")
	}
	quantity := 1
	if q := c.FormValue("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			return fail(http.StatusBadRequest, "Invalid quantity")
		}
		quantity = n
	}

	s.store.mu.Lock()
	d := &domain.CustomDesign{
		ID:        s.store.id(),
		UserID:    userID(c),
		ImageURL:  uploadURL("designs", fh.Filename),
		Note:      c.FormValue("note"),
		PrintSize: c.FormValue("printSize"),
		Quantity:  quantity,
		Status:    domain.DesignPending,
		CreatedAt: s.store.now(),
	}
	s.store.designs[d.ID] = d
	out := *d
	s.store.mu.Unlock()
	return c.JSON(http.StatusCreated, designBody{Design: &out})
}

func (s *Server) designsWhere(keep func(*domain.CustomDesign) bool) []domain.CustomDesign {
	out := make([]domain.CustomDesign, 0)
	for _, d := range s.store.designs {
		if keep(d) {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (s *Server) myDesigns(c echo.Context) error {
	uid := userID(c)
	s.store.mu.Lock()
	out := s.designsWhere(func(d *domain.CustomDesign) bool { return d.UserID == uid })
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, designsBody{Designs: out})
}

// ownDesign must be called with s.store.mu held. Other users' designs are
// reported as missing.
func (s *Server) ownDesign(c echo.Context) (*domain.CustomDesign, error) {
	id, err := pathID(c, "id")
	if err != nil {
		return nil, err
	}
	d, ok := s.store.designs[id]
	if !ok || d.UserID != userID(c) {
		return nil, fail(http.StatusNotFound, "Design not found")
	}
	return d, nil
}

func (s *Server) getDesign(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	d, err := s.ownDesign(c)
	if err != nil {
		return err
	}
	out := *d
	return c.JSON(http.StatusOK, designBody{Design: &out})
}

func (s *Server) deleteDesign(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	d, err := s.ownDesign(c)
	if err != nil {
		return err
	}
	if !d.Status.Deletable() {
		return fail(http.StatusBadRequest, "Design is already being processed")
	}
	delete(s.store.designs, d.ID)
	return c.JSON(http.StatusOK, messageBody{Message: "Design deleted"})
}
