package inbound

import (
	"github.com/u22n/platform/internal/account/usecase"
	"github.com/u22n/platform/internal/pkg/goerror"
	"github.com/u22n/platform/internal/pkg/jwt"
	"github.com/u22n/platform/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the account two-factor lifecycle.
type HTTPEndpoint struct {
	uc uc
}

func accountID(r *router.Request) (int64, error) {
	clm, ok := jwt.FromContext(r.Context())
	if !ok {
		return 0, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return clm.AccountID, nil
}

// TwoFactorStatus reports the two-factor state of the current account.
// @Summary Two-factor status
// @Description Returns the derived two-factor state (unenrolled, provisioned or enrolled).
// @Tags Account, Two Factor
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=TwoFactorStatusResponse} "Two-factor status"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/2fa [get]
func (h *HTTPEndpoint) TwoFactorStatus(r *router.Request) (any, error) {
	id, err := accountID(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorStatus(r.Context(), usecase.TwoFactorStatusInput{AccountID: id})
	if err != nil {
		return nil, err
	}

	return TwoFactorStatusResponse{State: resp.State.String(), Enabled: resp.Enabled}, nil
}

// TwoFactorProvision creates a TOTP secret for the current account.
// @Summary Provision two-factor
// @Description Generates a TOTP secret and returns the otpauth URI for authenticator apps.
// @Tags Account, Two Factor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} router.successResponse{data=TwoFactorProvisionResponse} "Provisioning URI"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 409 {object} router.errorResponse "Already set up"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/2fa/provision [post]
func (h *HTTPEndpoint) TwoFactorProvision(r *router.Request) (any, error) {
	id, err := accountID(r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorProvision(r.Context(), usecase.TwoFactorProvisionInput{AccountID: id})
	if err != nil {
		return nil, err
	}

	return TwoFactorProvisionResponse{URI: resp.URI}, nil
}

// TwoFactorVerify confirms the provisioned secret and enables two-factor.
// @Summary Verify two-factor
// @Description Validates a TOTP code, enables two-factor and returns the recovery code once.
// @Tags Account, Two Factor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body TwoFactorVerifyRequest true "TOTP code"
// @Success 200 {object} router.successResponse{data=TwoFactorVerifyResponse} "Recovery code"
// @Failure 400 {object} router.errorResponse "Not set up"
// @Failure 401 {object} router.errorResponse "Invalid code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 409 {object} router.errorResponse "Already verified"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/2fa/verify [post]
func (h *HTTPEndpoint) TwoFactorVerify(r *router.Request) (any, error) {
	id, err := accountID(r)
	if err != nil {
		return nil, err
	}

	var req TwoFactorVerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorVerify(r.Context(), usecase.TwoFactorVerifyInput{
		AccountID: id,
		Code:      req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TwoFactorVerifyResponse{RecoveryCode: resp.RecoveryCode}, nil
}

// TwoFactorDisable turns two-factor off with a current TOTP code.
// @Summary Disable two-factor
// @Description Validates a TOTP code and removes the secret and recovery code.
// @Tags Account, Two Factor
// @Security BearerAuth
// @Accept json
// @Param request body TwoFactorDisableRequest true "TOTP code"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Not set up"
// @Failure 401 {object} router.errorResponse "Invalid code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/2fa/disable [post]
func (h *HTTPEndpoint) TwoFactorDisable(r *router.Request) (any, error) {
	id, err := accountID(r)
	if err != nil {
		return nil, err
	}

	var req TwoFactorDisableRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.TwoFactorDisable(r.Context(), usecase.TwoFactorDisableInput{
		AccountID: id,
		Code:      req.Code,
	})
}

// TwoFactorRecover turns two-factor off with the recovery code.
// @Summary Recover two-factor
// @Description Validates the recovery code issued at verification and removes two-factor.
// @Tags Account, Two Factor
// @Security BearerAuth
// @Accept json
// @Param request body TwoFactorRecoverRequest true "Recovery code"
// @Success 204 "No Content"
// @Failure 400 {object} router.errorResponse "Not set up"
// @Failure 401 {object} router.errorResponse "Invalid recovery code"
// @Failure 404 {object} router.errorResponse "User not found"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/account/2fa/recover [post]
func (h *HTTPEndpoint) TwoFactorRecover(r *router.Request) (any, error) {
	id, err := accountID(r)
	if err != nil {
		return nil, err
	}

	var req TwoFactorRecoverRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	return nil, h.uc.TwoFactorRecover(r.Context(), usecase.TwoFactorRecoverInput{
		AccountID:    id,
		RecoveryCode: req.RecoveryCode,
	})
}
