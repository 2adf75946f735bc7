package controllers

import (
	"context"
	"net/http"
	"net/url"

	"github.com/0xweirdlabs/fastapi.prod.starter/api/middleware"
	"github.com/0xweirdlabs/fastapi.prod.starter/api/responses"
	"github.com/0xweirdlabs/fastapi.prod.starter/api/validators"
	"github.com/0xweirdlabs/fastapi.prod.starter/internal/auth"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	pkgerrors "github.com/0xweirdlabs/fastapi.prod.starter/pkg/errors"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/logger"
)

// authService is the surface of the auth domain the controllers call.
type authService interface {
	Login(ctx context.Context, dto auth.LoginDTO) (*auth.TokenDTO, error)
	Signup(ctx context.Context, dto auth.SignupDTO) (*auth.SignupResultDTO, error)
	AuthorizationURL(providerName string) (*auth.AuthorizationURLDTO, error)
	CompleteCallback(ctx context.Context, code, state string) (*auth.TokenDTO, error)
	Logout(ctx context.Context, token string) error
}

// AuthLogin handles the form-encoded password grant.
func AuthLogin(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := validators.ParseForm(r); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dto := auth.LoginDTO{
			Username: validators.FormValue(r, "username"),
			Password: r.PostFormValue("password"),
		}
		if err := validators.ValidateStruct(dto); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		token, err := svc.Login(ctx, dto)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, token)
	}
}

// AuthSignup registers a local account. The form carries the same username
// and password fields as login; email and full_name are optional extras.
func AuthSignup(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if err := validators.ParseForm(r); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		email := validators.FormValue(r, "username")
		if email == "" {
			email = validators.FormValue(r, "email")
		}
		dto := auth.SignupDTO{
			Email:    email,
			Password: r.PostFormValue("password"),
			FullName: validators.FormValue(r, "full_name"),
		}
		if err := validators.ValidateStruct(dto); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Signup(ctx, dto)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLoginGoogle starts the delegated browser flow.
func AuthLoginGoogle(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dto, err := svc.AuthorizationURL("google")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// AuthCallback finishes the delegated flow. It always answers with a redirect
// to the frontend: on success carrying the session token as a query parameter
// and a cookie, on failure carrying an error message. No JSON leaves here.
func AuthCallback(svc authService, frontend config.FrontendConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		query := r.URL.Query()

		if providerErr := query.Get("error"); providerErr != "" {
			redirectWithError(w, r, frontend, providerErr)
			return
		}

		token, err := svc.CompleteCallback(ctx, query.Get("code"), query.Get("state"))
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "oauth.callback.failed", err)
			}
			redirectWithError(w, r, frontend, publicCallbackMessage(err))
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "Authorization",
			Value:    "Bearer " + token.AccessToken,
			Path:     "/",
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, callbackURL(frontend, url.Values{"token": {token.AccessToken}}), http.StatusTemporaryRedirect)
	}
}

// AuthLogout clears the session cookie and revokes the provider session when
// one exists. Stateless local tokens stay valid until expiry; the endpoint
// still answers 200 so clients can always "log out".
func AuthLogout(svc authService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token := middleware.BearerToken(r); token != "" {
			if err := svc.Logout(ctx, token); err != nil && logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "auth.logout.provider_signout_failed")
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "Authorization",
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		responses.WriteSuccess(w, auth.MessageDTO{Message: "Successfully logged out"})
	}
}

// AuthMe echoes the resolved identity of the caller.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := middleware.IdentityFromContext(r.Context())
		if ident == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated"))
			return
		}
		responses.WriteSuccess(w, ident)
	}
}

func callbackURL(frontend config.FrontendConfig, params url.Values) string {
	return frontend.URL + "/auth-callback?" + params.Encode()
}

func redirectWithError(w http.ResponseWriter, r *http.Request, frontend config.FrontendConfig, message string) {
	http.Redirect(w, r, callbackURL(frontend, url.Values{"error": {message}}), http.StatusTemporaryRedirect)
}

// publicCallbackMessage flattens internal failure detail into the short
// message the frontend displays.
func publicCallbackMessage(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "authentication failed"
	}
	switch typed.Code() {
	case pkgerrors.CodeNotImplemented:
		return "oauth login is not configured"
	case pkgerrors.CodeDependency:
		return "identity provider is unavailable"
	case pkgerrors.CodeValidation, pkgerrors.CodeUnauthorized:
		return "authentication failed"
	default:
		return "authentication failed"
	}
}
