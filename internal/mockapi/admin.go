package mockapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/pulsepr/storefront/internal/core/domain"
)

type orderStatusRequest struct {
	OrderStatus domain.OrderStatus `json:"orderStatus"`
}

type designStatusRequest struct {
	Status    domain.DesignStatus `json:"status"`
	AdminNote string              `json:"adminNote"`
}

type applyOfferRequest struct {
	OfferID  int64  `json:"offerId"`
	Category string `json:"category"`
}

type statsBody struct {
	Stats domain.Stats `json:"stats"`
}

// maxTopProducts bounds the dashboard's best seller list.
const maxTopProducts = 5

// ---- products ----

func (s *Server) adminProducts(c echo.Context) error {
	s.store.mu.Lock()
	products := s.store.productList(false)
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, productsBody{Products: products})
}

func fromInput(p *domain.Product, in domain.ProductInput) {
	p.Name = in.Name
	p.Brand = in.Brand
	p.Description = in.Description
	p.Category = in.Category
	p.Price = in.Price
	p.DiscountPrice = in.DiscountPrice
	p.IsActive = in.IsActive
	p.Sizes = append([]domain.SizeStock(nil), in.Sizes...)
	p.Images = make([]domain.ProductImage, 0, len(in.Images))
	for _, url := range in.Images {
		p.Images = append(p.Images, domain.ProductImage{ImageURL: url})
	}
}

func checkProduct(in domain.ProductInput) error {
	if strings.TrimSpace(in.Name) == "" || in.Category == "" || !in.Price.IsPositive() {
		return fail(http.StatusBadRequest, "Name, category and price are required")
	}
	for _, st := range in.Sizes {
		if !st.Size.Valid() || st.StockQuantity < 0 {
			return fail(http.StatusBadRequest, "Invalid size stock")
		}
	}
	return nil
}

func (s *Server) addProduct(c echo.Context) error {
	var in domain.ProductInput
	if err := c.Bind(&in); err != nil {
		return errInvalidPayload
	}
	if err := checkProduct(in); err != nil {
		return err
	}
	p := s.AddProduct(in)
	return c.JSON(http.StatusCreated, productBody{Product: &p})
}

func (s *Server) updateProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in domain.ProductInput
	if err := c.Bind(&in); err != nil {
		return errInvalidPayload
	}
	if err := checkProduct(in); err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	p, ok := s.store.products[id]
	if !ok {
		return errProductNotFound
	}
	fromInput(p, in)
	out := *p
	return c.JSON(http.StatusOK, productBody{Product: &out})
}

func (s *Server) deleteProduct(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if _, ok := s.store.products[id]; !ok {
		return errProductNotFound
	}
	delete(s.store.products, id)
	return c.JSON(http.StatusOK, messageBody{Message: "Product deleted"})
}

func (s *Server) uploadImages(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(http.StatusBadRequest, "No images uploaded")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return fail(http.StatusBadRequest, "No images uploaded")
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		urls = append(urls, uploadURL("products", fh.Filename))
	}
	return c.JSON(http.StatusOK, map[string][]string{"images": urls})
}

// ---- orders ----

func (s *Server) adminOrders(c echo.Context) error {
	s.store.mu.Lock()
	out := make([]domain.Order, 0, len(s.store.orders))
	for _, o := range s.store.orders {
		if a, ok := s.store.accounts[o.UserID]; ok {
			o.User = publicUser(a)
		}
		out = append(out, o)
	}
	s.store.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return c.JSON(http.StatusOK, ordersBody{Orders: out})
}

func (s *Server) updateOrderStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req orderStatusRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if !req.OrderStatus.Valid() {
		return fail(http.StatusBadRequest, "Invalid order status")
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for i := range s.store.orders {
		if s.store.orders[i].ID == id {
			s.store.orders[i].OrderStatus = req.OrderStatus
			return c.JSON(http.StatusOK, messageBody{Message: "Order status updated"})
		}
	}
	return fail(http.StatusNotFound, "Order not found")
}

// ---- users & stats ----

func (s *Server) adminUsers(c echo.Context) error {
	s.store.mu.Lock()
	out := make([]domain.UserRecord, 0, len(s.store.accounts))
	for _, a := range s.store.accounts {
		out = append(out, a.UserRecord)
	}
	s.store.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return c.JSON(http.StatusOK, map[string][]domain.UserRecord{"users": out})
}

// adminStats counts revenue over every order that was not cancelled.
func (s *Server) adminStats(c echo.Context) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	stats := domain.Stats{TotalRevenue: decimal.Zero, TotalOrders: len(s.store.orders), TotalUsers: len(s.store.accounts)}
	sold := make(map[int64]*domain.TopProduct)
	for _, o := range s.store.orders {
		if o.OrderStatus == domain.OrderCancelled {
			continue
		}
		stats.TotalRevenue = stats.TotalRevenue.Add(o.TotalAmount)
		for _, line := range o.Items {
			if line.Product == nil {
				continue
			}
			tp, ok := sold[line.Product.ID]
			if !ok {
				tp = &domain.TopProduct{ID: line.Product.ID, Name: line.Product.Name, Category: line.Product.Category}
				sold[line.Product.ID] = tp
			}
			tp.Sold += line.Quantity
		}
	}
	top := make([]domain.TopProduct, 0, len(sold))
	for _, tp := range sold {
		top = append(top, *tp)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Sold != top[j].Sold {
			return top[i].Sold > top[j].Sold
		}
		return top[i].ID < top[j].ID
	})
	if len(top) > maxTopProducts {
		top = top[:maxTopProducts]
	}
	stats.TopSellingProducts = top
	return c.JSON(http.StatusOK, statsBody{Stats: stats})
}

// ---- offers ----

func (s *Server) adminOffers(c echo.Context) error {
	s.store.mu.Lock()
	out := append([]domain.Offer{}, s.store.offers...)
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, map[string][]domain.Offer{"offers": out})
}

func (s *Server) createOffer(c echo.Context) error {
	var in domain.OfferInput
	if err := c.Bind(&in); err != nil {
		return errInvalidPayload
	}
	if strings.TrimSpace(in.Title) == "" || in.DiscountPercentage < 1 || in.DiscountPercentage > 100 {
		return fail(http.StatusBadRequest, "Title and a discount between 1 and 100 are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return fail(http.StatusBadRequest, "End date must not precede start date")
	}
	s.store.mu.Lock()
	offer := domain.Offer{
		ID:                 s.store.id(),
		Title:              in.Title,
		DiscountPercentage: in.DiscountPercentage,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		IsActive:           in.IsActive,
	}
	s.store.offers = append(s.store.offers, offer)
	s.store.mu.Unlock()
	return c.JSON(http.StatusCreated, map[string]domain.Offer{"offer": offer})
}

// applyOffer sets discountPrice = price × (100 − pct) / 100 on every product
// of the category; an empty category or "All Products" targets every product.
func (s *Server) applyOffer(c echo.Context) error {
	var req applyOfferRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var offer *domain.Offer
	for i := range s.store.offers {
		if s.store.offers[i].ID == req.OfferID {
			offer = &s.store.offers[i]
		}
	}
	if offer == nil {
		return fail(http.StatusNotFound, "Offer not found")
	}
	if !offer.IsActive {
		return fail(http.StatusBadRequest, "Offer is not active")
	}

	all := req.Category == "" || req.Category == domain.CategoryAll
	factor := decimal.NewFromInt(int64(100 - offer.DiscountPercentage)).Div(decimal.NewFromInt(100))
	updated := 0
	for _, p := range s.store.products {
		if !all && p.Category != req.Category {
			continue
		}
		discounted := p.Price.Mul(factor).Round(2)
		p.DiscountPrice = &discounted
		updated++
	}
	s.log.Info().Int64("offer", offer.ID).Str("category", req.Category).Int("products", updated).Msg("offer applied")
	return c.JSON(http.StatusOK, map[string]any{"message": "Offer applied", "updated": updated})
}

// ---- designs ----

func (s *Server) adminDesigns(c echo.Context) error {
	s.store.mu.Lock()
	out := s.designsWhere(func(*domain.CustomDesign) bool { return true })
	s.store.mu.Unlock()
	return c.JSON(http.StatusOK, designsBody{Designs: out})
}

func (s *Server) updateDesignStatus(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req designStatusRequest
	if err := c.Bind(&req); err != nil {
		return errInvalidPayload
	}
	if !req.Status.Valid() {
		return fail(http.StatusBadRequest, "Invalid design status")
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	d, ok := s.store.designs[id]
	if !ok {
		return fail(http.StatusNotFound, "Design not found")
	}
	d.Status = req.Status
	d.AdminNote = req.AdminNote
	return c.JSON(http.StatusOK, messageBody{Message: "Design status updated"})
}
