package handlers

import (
	"github.com/jmoiron/sqlx"

	"wholesale/internal/config"
	"wholesale/internal/repos"
	"wholesale/internal/services"
)

type Deps struct {
	Auth   *services.AuthService
	AuthH  *AuthHandler
	UserH  *UserHandler
	ProdH  *ProductHandler
	OrderH *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	userRepo := repos.NewUserRepo(db)
	prodRepo := repos.NewProductRepo(db)
	orderRepo := repos.NewOrderRepo(db)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	authSvc := services.NewAuthService(userRepo, tokens)
	userSvc := services.NewUserService(userRepo, authSvc)
	prodSvc := services.NewProductService(prodRepo)
	orderSvc := services.NewOrderService(orderRepo, prodRepo)

	return &Deps{
		Auth:   authSvc,
		AuthH:  &AuthHandler{Auth: authSvc, Users: userSvc},
		UserH:  &UserHandler{Users: userSvc},
		ProdH:  &ProductHandler{Products: prodSvc},
		OrderH: &OrderHandler{Orders: orderSvc},
	}
}
