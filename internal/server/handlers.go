package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/wardenlabs/warden/internal/notify"
)

// webhookRequest is the Farcaster notification webhook body.
type webhookRequest struct {
	FID                 int64  `json:"fid"`
	Event               string `json:"event"`
	NotificationDetails *struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	} `json:"notificationDetails"`
}

// disableEvents delete the subscription; everything else upserts.
var disableEvents = map[string]bool{
	"notifications_disabled": true,
	"frame_removed":          true,
	"miniapp_removed":        true,
}

func (s *Server) handleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleWebhook is deliberately tolerant: a malformed body is answered
// with 200 {"success":false} so the sender never retries forever.
func (s *Server) handleWebhook(c *echo.Context) error {
	var req webhookRequest
	if err := c.Bind(&req); err != nil || req.FID == 0 {
		s.log.Warn("ignoring malformed webhook", "err", err)
		return c.JSON(http.StatusOK, map[string]bool{"success": false})
	}

	ctx := c.Request().Context()
	if disableEvents[req.Event] {
		if err := s.store.Delete(ctx, req.FID); err != nil {
			s.log.Error("webhook delete failed", "fid", req.FID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]bool{"success": false})
		}
		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}

	sub := notify.Subscriber{FID: req.FID}
	if req.NotificationDetails != nil {
		sub.Token = req.NotificationDetails.Token
		sub.URL = req.NotificationDetails.URL
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		s.log.Error("webhook upsert failed", "fid", req.FID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]bool{"success": false})
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleAuth(c *echo.Context) error {
	authz := c.Request().Header.Get("Authorization")
	token, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || token == "" {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"success": false, "error": "Missing token",
		})
	}

	audience := s.cfg.Domain
	if audience == "" {
		audience = c.Request().Host
	}

	fid, err := s.auth.Verify(c.Request().Context(), token, audience)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"user":    map[string]int64{"fid": fid},
		})
	case errors.Is(err, ErrInvalidToken):
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"success": false, "error": "Invalid token",
		})
	default:
		s.log.Error("auth verification failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false, "error": "Internal error",
		})
	}
}

func (s *Server) handleCronRemind(c *echo.Context) error {
	authz := c.Request().Header.Get("Authorization")
	if s.cfg.CronSecret == "" || authz != "Bearer "+s.cfg.CronSecret {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"success": false, "error": "Unauthorized",
		})
	}

	out, err := s.reminder.Remind(c.Request().Context())
	if err != nil {
		s.log.Error("reminder run failed", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false, "error": "Internal error",
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "result": out})
}

// handleManifest serves the mini-app manifest assembled from server
// config: the signed account association plus the frame metadata the
// host reads (home/webhook URLs, required chain, capabilities).
func (s *Server) handleManifest(c *echo.Context) error {
	manifest := map[string]any{
		"accountAssociation": map[string]string{
			"header":    s.cfg.AssocHeader,
			"payload":   s.cfg.AssocPayload,
			"signature": s.cfg.AssocSignature,
		},
		"frame": map[string]any{
			"version":     "1",
			"name":        "Warden",
			"subtitle":    "Approval hygiene for your wallet",
			"description": "Scan outstanding token approvals, see your trust score, and revoke the risky ones in one batch.",
			"homeUrl":     s.cfg.AppURL,
			"iconUrl":     s.cfg.AppURL + "/icon.png",
			"webhookUrl":  s.cfg.AppURL + "/api/webhook",
			"requiredChains": []string{
				"eip155:8453",
			},
			"requiredCapabilities": []string{
				"actions.ready",
				"wallet.getEthereumProvider",
			},
		},
	}
	return c.JSON(http.StatusOK, manifest)
}
