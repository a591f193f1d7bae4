package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/nnnkkk7/sqlbuddy/pkg/config"
	"github.com/nnnkkk7/sqlbuddy/server/apierror"
	"github.com/nnnkkk7/sqlbuddy/server/types"
)

// ConnectionTester checks that a profile can be connected to.
// *connector.Registry implements it.
type ConnectionTester interface {
	TestConnection(ctx context.Context, p config.Profile) error
}

// ConnectionHandler handles connection test requests.
type ConnectionHandler struct {
	tester ConnectionTester
	cfg    config.Config
	log    logrus.FieldLogger
}

// NewConnectionHandler creates a new connection handler.
func NewConnectionHandler(tester ConnectionTester, cfg config.Config, log logrus.FieldLogger) *ConnectionHandler {
	return &ConnectionHandler{
		tester: tester,
		cfg:    cfg,
		log:    log,
	}
}

// Test handles POST /api/v1/connection/test. An empty profile means the
// default profile.
func (h *ConnectionHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req types.ConnectionTestRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	name := req.Profile
	if name == "" {
		name = h.cfg.DefaultProfile
	}

	profile, err := h.cfg.Profile(name)
	if err != nil {
		sendError(w, apierror.NewInvalidRequestError(err.Error()).WithData("profile", name))
		return
	}

	if err := h.tester.TestConnection(r.Context(), profile); err != nil {
		h.log.WithError(err).WithField("profile", name).Warn("Connection test failed")
		apiErr := apierror.FromError(err)
		if apiErr.Code == apierror.CodeInternalError {
			// The test query ran but did not return 1.
			apiErr = apierror.New(apierror.CodeConnectionFailed, err.Error())
		}
		sendError(w, apiErr.WithData("profile", name))
		return
	}

	writeJSON(w, http.StatusOK, types.ConnectionTestResponse{
		Success: true,
		Profile: name,
		Type:    profile.Type,
		Message: "Connection successful",
	})
}
