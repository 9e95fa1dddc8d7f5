// Package fakeapi is an in-memory store API for tests. It serves the same
// routes as the real backend from a Fiber app and is reached through Doer,
// so no socket is opened.
package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BaseURL is the base URL clients should be configured with.
const BaseURL = "http://store.test/api"

// Secret signs the access tokens the fake issues.
const Secret = "fakeapi-secret"

// SnapBaseURL is the gateway page the fake hands out for payments.
const SnapBaseURL = "https://app.sandbox.midtrans.com/snap"

type account struct {
	user     models.User
	password string
}

// Store is the fake backend state.
type Store struct {
	mu sync.Mutex

	TokenTTL time.Duration

	accounts     map[string]*account // by email
	sessions     map[string]string   // session token -> user id
	products     map[string]models.Product
	productIDs   []string
	releases     []models.Release
	promotions   map[string]decimal.Decimal
	orders       map[string][]*models.Order // by user id
	idempotency  map[string]*models.Order
	reservations map[string][]*models.Reservation // by user id
	wantList     map[string][]models.WantListItem
	collection   map[string][]models.CollectionItem
	rejections   map[string]string // product id -> message
	calls        []string
	orderSeq     int
}

// New returns an empty fake.
func New() *Store {
	return &Store{
		TokenTTL:     time.Hour,
		accounts:     make(map[string]*account),
		sessions:     make(map[string]string),
		products:     make(map[string]models.Product),
		promotions:   make(map[string]decimal.Decimal),
		orders:       make(map[string][]*models.Order),
		idempotency:  make(map[string]*models.Order),
		reservations: make(map[string][]*models.Reservation),
		wantList:     make(map[string][]models.WantListItem),
		collection:   make(map[string][]models.CollectionItem),
		rejections:   make(map[string]string),
	}
}

// AddUser registers an account directly.
func (s *Store) AddUser(user models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	s.accounts[strings.ToLower(user.Email)] = &account{user: user, password: password}
	return user
}

// AddProduct puts a product in the catalog.
func (s *Store) AddProduct(p models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.productIDs = append(s.productIDs, p.ID)
	}
	s.products[p.ID] = p
}

// AddRelease schedules a release.
func (s *Store) AddRelease(r models.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases = append(s.releases, r)
}

// AddPromotion makes code worth a fixed discount.
func (s *Store) AddPromotion(code string, discount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions[strings.ToUpper(code)] = discount
}

// RejectReservation makes the add-to-reservation call fail for productID.
func (s *Store) RejectReservation(productID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejections[productID] = message
}

// SetPaymentStatus changes an order's payment status as the gateway would.
func (s *Store) SetPaymentStatus(orderID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, orders := range s.orders {
		for _, o := range orders {
			if o.ID == orderID {
				o.PaymentStatus = status
			}
		}
	}
}

// RevokeSessions invalidates every session token, as a password reset on
// another device would.
func (s *Store) RevokeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]string)
}

// Calls returns "METHOD /path" for every request served, in order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Doer routes requests straight into the Fiber app.
type Doer struct {
	app *fiber.App
}

// Do implements the API client's Doer.
func (d *Doer) Do(req *http.Request) (*http.Response, error) {
	return d.app.Test(req, -1)
}

// Doer returns a Doer bound to a fresh app over s.
func (s *Store) Doer() *Doer {
	return &Doer{app: s.App()}
}

// App builds the Fiber app serving the store routes under /api.
func (s *Store) App() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", s.record)

	api.Post("/auth/login", s.handleLogin)
	api.Post("/auth/register", s.handleRegister)
	api.Get("/products", s.handleListProducts)
	api.Get("/products/:id", s.handleGetProduct)
	api.Get("/releases", s.handleListReleases)
	api.Get("/releases/:id/products", s.handleReleaseProducts)

	authed := api.Group("", s.authRequired)
	authed.Post("/auth/logout", s.handleLogout)
	authed.Get("/me", s.handleMe)
	authed.Patch("/me", s.handleUpdateMe)
	authed.Post("/orders", s.handleCreateOrder)
	authed.Get("/orders", s.handleListOrders)
	authed.Get("/orders/:id", s.handleGetOrder)
	authed.Post("/orders/:id/payment", s.handleCreatePayment)
	authed.Post("/promotions/validate", s.handleValidatePromotion)
	authed.Get("/reservations", s.handleListReservations)
	authed.Post("/reservations/items", s.handleAddReservation)
	authed.Post("/reservations/confirm", s.handleConfirmReservations)
	authed.Delete("/reservations/items/:id", s.handleCancelReservation)
	authed.Get("/wantlist", s.handleListWantList)
	authed.Post("/wantlist", s.handleAddWantList)
	authed.Delete("/wantlist/:productId", s.handleRemoveWantList)
	authed.Get("/collection", s.handleListCollection)
	authed.Post("/collection", s.handleAddCollection)
	authed.Delete("/collection/:id", s.handleRemoveCollection)
	return app
}

func (s *Store) record(c *fiber.Ctx) error {
	s.mu.Lock()
	s.calls = append(s.calls, c.Method()+" "+strings.TrimPrefix(c.Path(), "/api"))
	s.mu.Unlock()
	return c.Next()
}

func (s *Store) authRequired(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Authorization header is required"})
	}
	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(Secret), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	userID, _ := claims["sub"].(string)

	s.mu.Lock()
	sessionUser, ok := s.sessions[c.Get("X-Session-Token")]
	s.mu.Unlock()
	if !ok || sessionUser != userID {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Session expired"})
	}
	c.Locals("user_id", userID)
	return c.Next()
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// issue signs tokens for user. Callers hold s.mu.
func (s *Store) issue(user models.User) (models.AuthResponse, error) {
	exp := time.Now().Add(s.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"exp":   exp.Unix(),
		"iat":   time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(Secret))
	if err != nil {
		return models.AuthResponse{}, err
	}
	session := uuid.New().String()
	s.sessions[session] = user.ID
	return models.AuthResponse{AccessToken: signed, SessionToken: session, User: user}, nil
}

func (s *Store) handleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || acc.password != req.Password {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid credentials"})
	}
	resp, err := s.issue(acc.user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(resp)
}

func (s *Store) handleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	if _, exists := s.accounts[key]; exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": fmt.Sprintf("email '%s' already registered", req.Email)})
	}
	user := models.User{
		ID:          uuid.New().String(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Fulfillment: models.FulfillmentPickup,
	}
	s.accounts[key] = &account{user: user, password: req.Password}
	resp, err := s.issue(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Store) handleLogout(c *fiber.Ctx) error {
	s.mu.Lock()
	delete(s.sessions, c.Get("X-Session-Token"))
	s.mu.Unlock()
	return c.SendStatus(fiber.StatusNoContent)
}

// accountByID looks up the account for id. Callers hold s.mu.
func (s *Store) accountByID(id string) *account {
	for _, acc := range s.accounts {
		if acc.user.ID == id {
			return acc
		}
	}
	return nil
}

func (s *Store) handleMe(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(userID(c))
	if acc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}
	return c.JSON(acc.user)
}

func (s *Store) handleUpdateMe(c *fiber.Ctx) error {
	var upd models.ProfileUpdate
	if err := c.BodyParser(&upd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := s.accountByID(userID(c))
	if acc == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "user not found"})
	}
	acc.user.FirstName = upd.FirstName
	acc.user.LastName = upd.LastName
	acc.user.Phone = upd.Phone
	if upd.Address != nil {
		acc.user.Address = *upd.Address
	}
	if upd.Fulfillment != "" {
		acc.user.Fulfillment = upd.Fulfillment
	}
	acc.user.PreferredStore = upd.PreferredStore
	return c.JSON(acc.user)
}

func matches(p models.Product, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), strings.ToLower(search))
}

func (s *Store) handleListProducts(c *fiber.Ctx) error {
	search := c.Query("search")
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	if page < 1 {
		page = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []models.Product
	for _, id := range s.productIDs {
		if p := s.products[id]; matches(p, search) {
			found = append(found, p)
		}
	}
	start := (page - 1) * perPage
	if start > len(found) {
		start = len(found)
	}
	end := start + perPage
	if end > len(found) {
		end = len(found)
	}
	return c.JSON(fiber.Map{"data": models.ProductPage{
		Items:   append([]models.Product{}, found[start:end]...),
		Page:    page,
		PerPage: perPage,
		Total:   len(found),
	}})
}

func (s *Store) handleGetProduct(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[c.Params("id")]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "product not found"})
	}
	return c.JSON(p)
}

func (s *Store) handleListReleases(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]models.Release{}, s.releases...))
}

func (s *Store) handleReleaseProducts(c *fiber.Ctx) error {
	releaseID := c.Params("id")
	search := c.Query("search")
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []models.Product{}
	for _, id := range s.productIDs {
		if p := s.products[id]; p.ReleaseID == releaseID && matches(p, search) {
			found = append(found, p)
		}
	}
	return c.JSON(found)
}

func (s *Store) handleCreateOrder(c *fiber.Ctx) error {
	var req models.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "order has no items"})
	}
	key := c.Get("Idempotency-Key")
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.idempotency[key]; ok && key != "" {
		return c.JSON(existing)
	}
	for _, item := range req.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "unknown product " + item.ProductID})
		}
		if p.StockQuantity < item.Quantity {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "insufficient stock for " + p.Title})
		}
	}
	s.orderSeq++
	order := &models.Order{
		ID:             uuid.New().String(),
		Number:         fmt.Sprintf("SO-%04d", s.orderSeq),
		Items:          req.Items,
		DeliveryMethod: req.DeliveryMethod,
		PaymentMethod:  req.PaymentMethod,
		Address:        req.Address,
		PromoCode:      req.PromoCode,
		Subtotal:       req.Subtotal,
		ShippingFee:    req.ShippingFee,
		Discount:       req.Discount,
		Total:          req.Total,
		Status:         "pending",
		PaymentStatus:  models.PaymentStatusUnpaid,
		CreatedAt:      time.Now(),
	}
	uid := userID(c)
	s.orders[uid] = append(s.orders[uid], order)
	if key != "" {
		s.idempotency[key] = order
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (s *Store) handleListOrders(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Order{}
	for _, o := range s.orders[userID(c)] {
		out = append(out, *o)
	}
	return c.JSON(out)
}

// findOrder returns the caller's order. Callers hold s.mu.
func (s *Store) findOrder(c *fiber.Ctx) *models.Order {
	for _, o := range s.orders[userID(c)] {
		if o.ID == c.Params("id") {
			return o
		}
	}
	return nil
}

func (s *Store) handleGetOrder(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findOrder(c)
	if o == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}
	return c.JSON(o)
}

func (s *Store) handleCreatePayment(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.findOrder(c)
	if o == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}
	if o.PaymentMethod != models.PaymentOnline {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": "order is not paid online"})
	}
	o.PaymentStatus = models.PaymentStatusPending
	token := "snap-" + o.ID
	return c.JSON(fiber.Map{
		"token":        token,
		"redirect_url": SnapBaseURL + "/v2/vtweb/" + token,
	})
}

func (s *Store) handleValidatePromotion(c *fiber.Ctx) error {
	var req struct {
		Code     string          `json:"code"`
		Subtotal decimal.Decimal `json:"subtotal"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	discount, ok := s.promotions[strings.ToUpper(req.Code)]
	if !ok {
		return c.JSON(models.Promotion{Code: req.Code, Valid: false, Message: "promo code not recognised"})
	}
	return c.JSON(models.Promotion{Code: req.Code, Valid: true, Discount: discount})
}

func (s *Store) handleListReservations(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reservation{}
	for _, r := range s.reservations[userID(c)] {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return c.JSON(out)
}

func (s *Store) handleAddReservation(c *fiber.Ctx) error {
	var req models.ReservationItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, rejected := s.rejections[req.ProductID]; rejected {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": msg})
	}
	p, ok := s.products[req.ProductID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	uid := userID(c)
	for _, r := range s.reservations[uid] {
		if r.Product.ID == req.ProductID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "product already reserved"})
		}
	}
	r := &models.Reservation{
		ID:        uuid.New().String(),
		Product:   p,
		Quantity:  req.Quantity,
		Status:    models.ReservationPending,
		CreatedAt: time.Now(),
	}
	s.reservations[uid] = append(s.reservations[uid], r)
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (s *Store) handleConfirmReservations(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reservations[userID(c)] {
		if r.Status == models.ReservationPending {
			r.Status = models.ReservationForApproval
		}
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Store) handleCancelReservation(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(c)
	list := s.reservations[uid]
	for i, r := range list {
		if r.ID != c.Params("id") {
			continue
		}
		if r.Status != models.ReservationPending {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "only pending reservations can be cancelled"})
		}
		s.reservations[uid] = append(list[:i], list[i+1:]...)
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "reservation not found"})
}

func (s *Store) handleListWantList(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]models.WantListItem{}, s.wantList[userID(c)]...))
}

func (s *Store) handleAddWantList(c *fiber.Ctx) error {
	var req models.WantListRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	uid := userID(c)
	for _, item := range s.wantList[uid] {
		if item.ProductID == req.ProductID {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "already on want list"})
		}
	}
	item := models.WantListItem{ID: uuid.New().String(), ProductID: p.ID, Product: &p, CreatedAt: time.Now()}
	s.wantList[uid] = append(s.wantList[uid], item)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Store) handleRemoveWantList(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(c)
	list := s.wantList[uid]
	for i, item := range list {
		if item.ProductID == c.Params("productId") {
			s.wantList[uid] = append(list[:i], list[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "not on want list"})
}

func (s *Store) handleListCollection(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]models.CollectionItem{}, s.collection[userID(c)]...))
}

func (s *Store) handleAddCollection(c *fiber.Ctx) error {
	var req models.CollectionItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	acquired := time.Now()
	if req.AcquiredAt != nil {
		acquired = *req.AcquiredAt
	}
	item := models.CollectionItem{
		ID:         uuid.New().String(),
		ProductID:  p.ID,
		Product:    &p,
		Condition:  req.Condition,
		Quantity:   req.Quantity,
		AcquiredAt: acquired,
	}
	uid := userID(c)
	s.collection[uid] = append(s.collection[uid], item)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Store) handleRemoveCollection(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	uid := userID(c)
	list := s.collection[uid]
	for i, item := range list {
		if item.ID == c.Params("id") {
			s.collection[uid] = append(list[:i], list[i+1:]...)
			return c.SendStatus(fiber.StatusNoContent)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "collection item not found"})
}
