// Package backendtest provides an in-memory stand-in for the GreenThumb
// REST backend, used by package tests. It speaks the same wire contract the
// real Spring backend exposes: JSON bodies, the Spring page envelope,
// multipart product writes, per-client carts, and {"error": …} failures.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"greenthumb/internal/model"
)

// Server is one fixture instance. Zero-value maps are initialized by New;
// all access is serialized by mu so tests may hit it concurrently.
type Server struct {
	e *echo.Echo

	mu            sync.Mutex
	categories    map[int]model.Category
	products      map[int]model.ProductDetail
	carts         map[string][]model.CartItem
	users         map[string]model.User
	registrations map[string]model.Registration
	orders        int
	nextID        int

	// FailNextCartFetch makes the next cart GET return 500, for exercising
	// the stale-cache path after a successful mutation.
	FailNextCartFetch bool
}

// New creates a fixture with empty state.
func New() *Server {
	s := &Server{
		e:             echo.New(),
		categories:    map[int]model.Category{},
		products:      map[int]model.ProductDetail{},
		carts:         map[string][]model.CartItem{},
		users:         map[string]model.User{},
		registrations: map[string]model.Registration{},
		nextID:        1,
	}
	s.routes()
	return s
}

// Handler exposes the fixture as an http.Handler for httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) routes() {
	api := s.e.Group("/api")

	api.GET("/categorias", s.listCategories)
	api.GET("/categorias/:id", s.getCategory)
	api.POST("/categorias", s.createCategory)
	api.PUT("/categorias/:id", s.updateCategory)
	api.DELETE("/categorias/:id", s.deleteCategory)

	api.GET("/productos", s.listProducts)
	api.GET("/productos/tipos-producto", s.productTypes)
	api.GET("/productos/:id", s.getProduct)
	api.POST("/productos", s.createProduct)
	api.PUT("/productos/:id", s.updateProduct)
	api.DELETE("/productos/:id", s.deleteProduct)

	api.GET("/nivelesluz", s.lightLevels)
	api.GET("/frecuenciasriego", s.wateringFrequencies)

	api.GET("/carrito/:clienteId", s.getCart)
	api.POST("/carrito/:clienteId/agregar", s.addToCart)
	api.PUT("/carrito/:clienteId/actualizar", s.updateCartItem)
	api.DELETE("/carrito/:clienteId/eliminar/:productoId", s.removeFromCart)
	api.DELETE("/carrito/:clienteId/vaciar", s.clearCart)
	api.POST("/carrito/checkout", s.checkout)

	api.GET("/auth/sincronizar-usuario", s.syncUser)
	api.POST("/auth/registrar-cliente", s.registerClient)

	api.GET("/dashboard/metrics", s.dashboard)
}

// --- seeding helpers ---

// SeedUser registers a bearer token the fixture will accept, mapped to the
// given profile.
func (s *Server) SeedUser(token string, user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = user
}

// SeedCategory inserts a category and returns its assigned id.
func (s *Server) SeedCategory(name, description string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.categories[id] = model.Category{ID: id, Name: name, Description: description}
	return id
}

// SeedProduct inserts a product detail and returns its assigned id.
func (s *Server) SeedProduct(p model.ProductDetail) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	p.ID = id
	s.products[id] = p
	return id
}

// CartOf returns a copy of the stored cart for a client id.
func (s *Server) CartOf(clientID string) []model.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.CartItem, len(s.carts[clientID]))
	copy(items, s.carts[clientID])
	return items
}

// RegistrationOf returns the registration submitted for a token, if any.
func (s *Server) RegistrationOf(token string) (model.Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[token]
	return reg, ok
}

// --- auth ---

func (s *Server) bearerUser(c echo.Context) (model.User, string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return model.User{}, "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[token]
	return user, token, ok
}

func errJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

func (s *Server) syncUser(c echo.Context) error {
	user, _, ok := s.bearerUser(c)
	if !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	return c.JSON(http.StatusOK, user)
}

func (s *Server) registerClient(c echo.Context) error {
	user, token, ok := s.bearerUser(c)
	if !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	var reg model.Registration
	if err := c.Bind(&reg); err != nil {
		return errJSON(c, http.StatusBadRequest, "cuerpo inválido")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[token] = reg
	user.RegistrationComplete = true
	s.users[token] = user
	return c.JSON(http.StatusOK, user)
}

// --- categories ---

func (s *Server) listCategories(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Category{}
	for _, cat := range s.categories {
		out = append(out, cat)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getCategory(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[id]
	if !ok {
		return errJSON(c, http.StatusNotFound, "categoría no encontrada")
	}
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) createCategory(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	var payload model.CategoryPayload
	if err := c.Bind(&payload); err != nil {
		return errJSON(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if payload.Name == "" {
		return errJSON(c, http.StatusBadRequest, "el nombre es obligatorio")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	cat := model.Category{ID: id, Name: payload.Name, Description: payload.Description}
	s.categories[id] = cat
	return c.JSON(http.StatusCreated, cat)
}

func (s *Server) updateCategory(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	id, _ := strconv.Atoi(c.Param("id"))
	var payload model.CategoryPayload
	if err := c.Bind(&payload); err != nil {
		return errJSON(c, http.StatusBadRequest, "cuerpo inválido")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return errJSON(c, http.StatusNotFound, "categoría no encontrada")
	}
	cat := model.Category{ID: id, Name: payload.Name, Description: payload.Description}
	s.categories[id] = cat
	return c.JSON(http.StatusOK, cat)
}

func (s *Server) deleteCategory(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return errJSON(c, http.StatusNotFound, "categoría no encontrada")
	}
	delete(s.categories, id)
	return c.NoContent(http.StatusNoContent)
}

// --- products ---

func summaryOf(p model.ProductDetail) model.ProductSummary {
	price := decimal.Zero
	if p.CurrentPrice != nil {
		price = p.CurrentPrice.Amount
	}
	imageURL := ""
	if len(p.Images) > 0 {
		imageURL = p.Images[0].URL
	}
	return model.ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		CategoryName: p.Category.Name,
		Price:        price,
		ImageURL:     imageURL,
		Stock:        p.Stock,
	}
}

func (s *Server) listProducts(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	if size <= 0 {
		size = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	all := []model.ProductSummary{}
	for _, p := range s.products {
		all = append(all, summaryOf(p))
	}

	start := page * size
	if start > len(all) {
		start = len(all)
	}
	end := start + size
	if end > len(all) {
		end = len(all)
	}
	totalPages := (len(all) + size - 1) / size

	return c.JSON(http.StatusOK, model.Page[model.ProductSummary]{
		Content:       all[start:end],
		TotalPages:    totalPages,
		TotalElements: len(all),
		Size:          size,
		Number:        page,
	})
}

func (s *Server) getProduct(c echo.Context) error {
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return errJSON(c, http.StatusNotFound, "producto no encontrado")
	}
	return c.JSON(http.StatusOK, p)
}

// decodeProductParts reads the multipart parts of a product write.
func (s *Server) decodeProductParts(c echo.Context) (model.ProductPayload, *model.PlantDetails, *model.ToolDetails, *model.SeedDetails, error) {
	var payload model.ProductPayload
	raw := c.FormValue("producto")
	if raw == "" {
		return payload, nil, nil, nil, fmt.Errorf("falta la parte 'producto'")
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return payload, nil, nil, nil, fmt.Errorf("parte 'producto' inválida")
	}

	var plant *model.PlantDetails
	var tool *model.ToolDetails
	var seed *model.SeedDetails
	if raw := c.FormValue("detallesPlanta"); raw != "" {
		plant = &model.PlantDetails{}
		if err := json.Unmarshal([]byte(raw), plant); err != nil {
			return payload, nil, nil, nil, fmt.Errorf("parte 'detallesPlanta' inválida")
		}
	}
	if raw := c.FormValue("detallesHerramienta"); raw != "" {
		tool = &model.ToolDetails{}
		if err := json.Unmarshal([]byte(raw), tool); err != nil {
			return payload, nil, nil, nil, fmt.Errorf("parte 'detallesHerramienta' inválida")
		}
	}
	if raw := c.FormValue("detallesSemilla"); raw != "" {
		seed = &model.SeedDetails{}
		if err := json.Unmarshal([]byte(raw), seed); err != nil {
			return payload, nil, nil, nil, fmt.Errorf("parte 'detallesSemilla' inválida")
		}
	}
	return payload, plant, tool, seed, nil
}

func (s *Server) productFromParts(id int, payload model.ProductPayload, plant *model.PlantDetails, tool *model.ToolDetails, seed *model.SeedDetails, imageURL string) model.ProductDetail {
	detail := model.ProductDetail{
		ID:           id,
		Name:         payload.Name,
		Description:  payload.Description,
		Stock:        payload.Stock,
		ReorderPoint: payload.ReorderPoint,
		Category:     s.categories[payload.CategoryID],
		Type:         model.ProductType{ID: payload.TypeID},
		CurrentPrice: &model.CurrentPrice{Amount: payload.Price},
		CurrentCost:  &model.CurrentCost{Amount: payload.Cost},
		PlantDetails: plant,
		ToolDetails:  tool,
		SeedDetails:  seed,
	}
	if imageURL != "" {
		detail.Images = []model.ProductImage{{ID: id, URL: imageURL, AltText: payload.Name}}
	}
	return detail
}

func (s *Server) storedImageURL(c echo.Context, id int) string {
	file, err := c.FormFile("imagen")
	if err != nil || file == nil {
		return ""
	}
	src, err := file.Open()
	if err != nil {
		return ""
	}
	defer src.Close()
	_, _ = io.Copy(io.Discard, src)
	return fmt.Sprintf("/uploads/%d/%s", id, file.Filename)
}

func (s *Server) createProduct(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	payload, plant, tool, seed, err := s.decodeProductParts(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.mu.Unlock()

	imageURL := s.storedImageURL(c, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	detail := s.productFromParts(id, payload, plant, tool, seed, imageURL)
	s.products[id] = detail
	return c.JSON(http.StatusCreated, detail)
}

func (s *Server) updateProduct(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	id, _ := strconv.Atoi(c.Param("id"))
	payload, plant, tool, seed, err := s.decodeProductParts(c)
	if err != nil {
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	imageURL := s.storedImageURL(c, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.products[id]
	if !ok {
		return errJSON(c, http.StatusNotFound, "producto no encontrado")
	}
	detail := s.productFromParts(id, payload, plant, tool, seed, imageURL)
	if imageURL == "" {
		detail.Images = prev.Images
	}
	s.products[id] = detail
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) deleteProduct(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	id, _ := strconv.Atoi(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return errJSON(c, http.StatusNotFound, "producto no encontrado")
	}
	delete(s.products, id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) productTypes(c echo.Context) error {
	return c.JSON(http.StatusOK, []model.ProductType{
		{ID: model.ProductTypePlant, Name: "Planta"},
		{ID: model.ProductTypeTool, Name: "Herramienta"},
		{ID: model.ProductTypeSeed, Name: "Semilla"},
	})
}

func (s *Server) lightLevels(c echo.Context) error {
	return c.JSON(http.StatusOK, []model.LightLevel{
		{ID: 1, Description: "Sombra"},
		{ID: 2, Description: "Media sombra"},
		{ID: 3, Description: "Pleno sol"},
	})
}

func (s *Server) wateringFrequencies(c echo.Context) error {
	return c.JSON(http.StatusOK, []model.WateringFrequency{
		{ID: 1, Description: "Diaria"},
		{ID: 2, Description: "Semanal"},
		{ID: 3, Description: "Quincenal"},
	})
}

// --- cart ---

func (s *Server) getCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNextCartFetch {
		s.FailNextCartFetch = false
		return errJSON(c, http.StatusInternalServerError, "error interno")
	}
	items := s.carts[c.Param("clienteId")]
	if items == nil {
		items = []model.CartItem{}
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) addToCart(c echo.Context) error {
	clientID := c.Param("clienteId")
	productID, _ := strconv.Atoi(c.QueryParam("productoId"))
	quantity, _ := strconv.Atoi(c.QueryParam("cantidad"))
	if quantity < 1 {
		return errJSON(c, http.StatusBadRequest, "cantidad inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	product, ok := s.products[productID]
	if !ok {
		return errJSON(c, http.StatusNotFound, "producto no encontrado")
	}

	// Quantities for a product already in the cart are merged server-side.
	items := s.carts[clientID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity += quantity
			s.carts[clientID] = items
			return c.JSON(http.StatusOK, items[i])
		}
	}

	summary := summaryOf(product)
	item := model.CartItem{
		ProductID:   productID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   summary.Price,
		ImageURL:    summary.ImageURL,
	}
	s.carts[clientID] = append(items, item)
	return c.JSON(http.StatusOK, item)
}

func (s *Server) updateCartItem(c echo.Context) error {
	clientID := c.Param("clienteId")
	productID, _ := strconv.Atoi(c.QueryParam("productoId"))
	quantity, _ := strconv.Atoi(c.QueryParam("nuevaCantidad"))
	if quantity < 1 {
		return errJSON(c, http.StatusBadRequest, "cantidad inválida")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[clientID]
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			s.carts[clientID] = items
			return c.JSON(http.StatusOK, items[i])
		}
	}
	return errJSON(c, http.StatusNotFound, "el producto no está en el carrito")
}

func (s *Server) removeFromCart(c echo.Context) error {
	clientID := c.Param("clienteId")
	productID, _ := strconv.Atoi(c.Param("productoId"))

	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.carts[clientID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[clientID] = append(items[:i], items[i+1:]...)
			return c.NoContent(http.StatusNoContent)
		}
	}
	return errJSON(c, http.StatusNotFound, "el producto no está en el carrito")
}

func (s *Server) clearCart(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, c.Param("clienteId"))
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) checkout(c echo.Context) error {
	var req model.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "cuerpo inválido")
	}
	if req.PaymentMethod == "" {
		return errJSON(c, http.StatusBadRequest, "falta el método de pago")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders++
	return c.JSON(http.StatusOK, model.PaymentPreference{
		ID:        fmt.Sprintf("pref-%d", s.orders),
		InitPoint: fmt.Sprintf("https://pay.example.com/init/%d", s.orders),
	})
}

// --- dashboard ---

func (s *Server) dashboard(c echo.Context) error {
	if _, _, ok := s.bearerUser(c); !ok {
		return errJSON(c, http.StatusUnauthorized, "token inválido")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(http.StatusOK, model.Dashboard{
		TotalProducts:    len(s.products),
		TotalActiveUsers: len(s.users),
		TotalOrders:      s.orders,
		TopSellers:       []model.TopProduct{},
	})
}
