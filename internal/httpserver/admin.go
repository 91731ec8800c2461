package httpserver

import (
	"context"
	"sort"

	"github.com/gin-gonic/gin"

	"conversion-guard/pkg/errors"
	"conversion-guard/pkg/response"
)

// triggerRun starts one full monitoring pass in the background. Only one
// manual run may be in flight; a second request gets 409 until it finishes.
func (srv *HTTPServer) triggerRun(c *gin.Context) {
	ctx := c.Request.Context()

	if !srv.runMu.TryLock() {
		response.Error(c, errors.NewHTTPError(409, "A run is already in progress", 409))
		return
	}

	go func() {
		defer srv.runMu.Unlock()
		srv.orch.Run(context.Background())
	}()

	srv.logger.Infof(ctx, "manual run triggered")
	response.OK(c, gin.H{"status": "started"})
}

// getConfig returns the monitoring configuration. Credentials and
// connection secrets are not included.
func (srv *HTTPServer) getConfig(c *gin.Context) {
	apps := make(map[string]gin.H, len(srv.cfg.Apps))
	for id, app := range srv.cfg.Apps {
		apps[id] = gin.H{"emails": app.Alerts.Emails}
	}

	response.OK(c, gin.H{
		"environment": srv.cfg.Environment.Name,
		"apps":        apps,
		"rules": gin.H{
			"interval_lookback": srv.cfg.Rules.IntervalLookback.String(),
			"release_grace":     srv.cfg.Rules.ReleaseGrace.String(),
			"store_lookback":    srv.cfg.Rules.StoreLookback.String(),
		},
	})
}

// getAppIDs lists the distinct app ids present in the ads source table.
func (srv *HTTPServer) getAppIDs(c *gin.Context) {
	ctx := c.Request.Context()

	actions, err := srv.repo.ConversionActions(ctx)
	if err != nil {
		srv.logger.Errorf(ctx, "internal.httpserver.getAppIDs: %v", err)
		response.Error(c, err)
		return
	}

	seen := make(map[string]struct{}, len(actions))
	ids := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.AppID == "" {
			continue
		}
		if _, ok := seen[a.AppID]; ok {
			continue
		}
		seen[a.AppID] = struct{}{}
		ids = append(ids, a.AppID)
	}
	sort.Strings(ids)

	response.OK(c, gin.H{"app_ids": ids})
}

// getEventNames lists the distinct event names present in the ads source table.
func (srv *HTTPServer) getEventNames(c *gin.Context) {
	ctx := c.Request.Context()

	actions, err := srv.repo.ConversionActions(ctx)
	if err != nil {
		srv.logger.Errorf(ctx, "internal.httpserver.getEventNames: %v", err)
		response.Error(c, err)
		return
	}

	seen := make(map[string]struct{}, len(actions))
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.EventName == "" {
			continue
		}
		if _, ok := seen[a.EventName]; ok {
			continue
		}
		seen[a.EventName] = struct{}{}
		names = append(names, a.EventName)
	}
	sort.Strings(names)

	response.OK(c, gin.H{"event_names": names})
}
