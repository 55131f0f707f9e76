package user

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"techshop_back_end/internal/cache"
	"techshop_back_end/internal/handlers"
	"techshop_back_end/internal/middleware"
	"techshop_back_end/internal/models"
	"techshop_back_end/internal/repository"
	"techshop_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Welcomer greets new customers by email.
type Welcomer interface {
	Welcome(ctx context.Context, email, name, shopURL string) error
}

// Account serves customer sign-up, sign-in and profile.
type Account struct {
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	tokens    *cache.Cache
	secret    []byte
	tokenTTL  time.Duration
	welcomer  Welcomer
	shopURL   string
}

func NewAccount(customers repository.CustomerRepository, orders repository.OrderRepository, tokens *cache.Cache,
	secret []byte, tokenTTL time.Duration, welcomer Welcomer, shopURL string) *Account {
	return &Account{customers: customers, orders: orders, tokens: tokens, secret: secret, tokenTTL: tokenTTL, welcomer: welcomer, shopURL: shopURL}
}

type sessionView struct {
	Token     string                  `json:"token,omitempty"`
	ExpiresAt time.Time               `json:"expires_at"`
	User      models.Account          `json:"user"`
	Profile   *models.CustomerProfile `json:"profile,omitempty"`
}

func (h *Account) issue(c *gin.Context, status int, account models.Account, profile *models.CustomerProfile) {
	token, claims, err := utils.GenerateJWT(h.secret, account, h.tokenTTL)
	if err != nil {
		log.Printf("❌ Issue token for %s: %v", account.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao gerar sessão"})
		return
	}
	c.JSON(status, sessionView{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: account, Profile: profile})
}

type registerInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// POST /api/auth/register
func (h *Account) Register(c *gin.Context) {
	var in registerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nome, email e senha são obrigatórios"})
		return
	}
	email := repository.NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email inválido"})
		return
	}

	hash, err := utils.HashPassword(in.Password)
	if errors.Is(err, utils.ErrWeakPassword) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A senha deve ter pelo menos 6 caracteres"})
		return
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao criar conta")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	account := models.Account{ID: uuid.NewString(), Email: email, PasswordHash: hash, Role: models.RoleCustomer}
	if err := h.customers.CreateAccount(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Já existe uma conta com este email"})
			return
		}
		handlers.Fail(c, err, "Erro ao criar conta")
		return
	}

	profile := models.CustomerProfile{
		ID:      uuid.NewString(),
		UserID:  account.ID,
		Name:    strings.TrimSpace(in.Name),
		Email:   email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: strings.TrimSpace(in.Address),
	}
	if err := h.customers.SaveProfile(ctx, &profile); err != nil {
		// the account exists; the profile can be completed later
		log.Printf("⚠️ Save profile for %s: %v", email, err)
	}

	if h.welcomer != nil {
		if err := h.welcomer.Welcome(ctx, email, profile.Name, h.shopURL); err != nil {
			log.Printf("⚠️ Welcome email to %s: %v", email, err)
		}
	}

	log.Printf("✅ Customer registered: %s", email)
	h.issue(c, http.StatusCreated, account, &profile)
}

type loginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login. Failures answer 401, which LoginRateLimit counts.
func (h *Account) Login(c *gin.Context) {
	var in loginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email e senha são obrigatórios"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	account, err := h.customers.GetAccountByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		handlers.Fail(c, err, "Erro ao entrar")
		return
	}
	ok := false
	if account != nil {
		ok, err = utils.VerifyPassword(in.Password, account.PasswordHash)
		if err != nil {
			log.Printf("⚠️ Password check for %s: %v", account.Email, err)
		}
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou senha incorretos"})
		return
	}

	if utils.NeedsRehash(account.PasswordHash) {
		if hash, err := utils.HashPassword(in.Password); err == nil {
			if err := h.customers.UpdatePasswordHash(ctx, account.Email, hash); err != nil {
				log.Printf("⚠️ Rehash for %s: %v", account.Email, err)
			}
		}
	}

	profile, err := h.customers.GetProfile(ctx, account.ID)
	if err != nil {
		profile = nil
	}
	h.issue(c, http.StatusOK, *account, profile)
}

// POST /api/auth/logout revokes the token until it would have expired.
func (h *Account) Logout(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Não autenticado"})
		return
	}
	if h.tokens != nil {
		if err := h.tokens.BlacklistToken(c.Request.Context(), claims.ID, claims.Remaining()); err != nil {
			handlers.Fail(c, err, "Erro ao encerrar sessão")
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

// GET /api/auth/session
func (h *Account) Session(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Não autenticado"})
		return
	}
	view := sessionView{
		ExpiresAt: claims.ExpiresAt.Time,
		User:      models.Account{ID: claims.UserID, Email: claims.Email, Role: claims.Role},
	}
	if p, err := h.customers.GetProfile(c.Request.Context(), claims.UserID); err == nil {
		view.Profile = p
	}
	c.JSON(http.StatusOK, view)
}

// GET /api/profile
func (h *Account) GetProfile(c *gin.Context) {
	p, err := h.customers.GetProfile(c.Request.Context(), c.GetString(middleware.KeyUserID))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusOK, models.CustomerProfile{UserID: c.GetString(middleware.KeyUserID), Email: c.GetString(middleware.KeyEmail)})
		return
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar perfil")
		return
	}
	c.JSON(http.StatusOK, p)
}

type profileInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// PUT /api/profile creates the profile on first save.
func (h *Account) SaveProfile(c *gin.Context) {
	var in profileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		handlers.BadRequest(c)
		return
	}
	ctx := c.Request.Context()
	userID := c.GetString(middleware.KeyUserID)

	p, err := h.customers.GetProfile(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		p = &models.CustomerProfile{ID: uuid.NewString(), UserID: userID, Email: c.GetString(middleware.KeyEmail)}
	} else if err != nil {
		handlers.Fail(c, err, "Erro ao salvar perfil")
		return
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Phone = strings.TrimSpace(in.Phone)
	p.Address = strings.TrimSpace(in.Address)
	if err := h.customers.SaveProfile(ctx, p); err != nil {
		handlers.Fail(c, err, "Erro ao salvar perfil")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GET /api/profile/orders
func (h *Account) Orders(c *gin.Context) {
	list, err := h.orders.ListOrders(c.Request.Context(), repository.OrderFilter{UserID: c.GetString(middleware.KeyUserID)})
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedidos")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/profile/orders/:id
func (h *Account) Order(c *gin.Context) {
	ctx := c.Request.Context()
	o, err := h.orders.GetOrder(ctx, c.Param("id"))
	if err == nil && o.UserID != c.GetString(middleware.KeyUserID) {
		err = repository.ErrNotFound
	}
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedido")
		return
	}
	items, err := h.orders.ListOrderItems(ctx, o.ID)
	if err != nil {
		handlers.Fail(c, err, "Erro ao carregar pedido")
		return
	}
	c.JSON(http.StatusOK, models.OrderWithItems{Order: *o, Items: items})
}
