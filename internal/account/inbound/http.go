package inbound

import (
	"context"

	"github.com/u22n/platform/internal/account/usecase"
	"github.com/u22n/platform/internal/pkg/router"
)

type uc interface {
	TwoFactorStatus(ctx context.Context, in usecase.TwoFactorStatusInput) (*usecase.TwoFactorStatusOutput, error)
	TwoFactorProvision(ctx context.Context, in usecase.TwoFactorProvisionInput) (*usecase.TwoFactorProvisionOutput, error)
	TwoFactorVerify(ctx context.Context, in usecase.TwoFactorVerifyInput) (*usecase.TwoFactorVerifyOutput, error)
	TwoFactorDisable(ctx context.Context, in usecase.TwoFactorDisableInput) error
	TwoFactorRecover(ctx context.Context, in usecase.TwoFactorRecoverInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Two-factor authentication (need authenticated)
	r.GET("/api/v1/account/2fa", end.TwoFactorStatus)
	r.POST("/api/v1/account/2fa/provision", end.TwoFactorProvision)
	r.POST("/api/v1/account/2fa/verify", end.TwoFactorVerify)
	r.POST("/api/v1/account/2fa/disable", end.TwoFactorDisable)
	r.POST("/api/v1/account/2fa/recover", end.TwoFactorRecover)
}
