package protocol

import (
	"context"
	"fmt"

	"github.com/jonwraymond/toolgate/health"
)

// ListerChecker reports dispatcher readiness: healthy when the tool
// lister responds. Register it with a health.Aggregator alongside the
// key-set checker.
type ListerChecker struct {
	lister ToolLister
}

// NewListerChecker creates a checker over the given lister.
func NewListerChecker(lister ToolLister) *ListerChecker {
	return &ListerChecker{lister: lister}
}

// Name returns the name of this checker.
func (c *ListerChecker) Name() string {
	return "tools"
}

// Check lists the tools and reports the outcome.
func (c *ListerChecker) Check(ctx context.Context) health.Result {
	tools, err := c.lister.ListTools(ctx)
	if err != nil {
		return health.Unhealthy("tool listing failed", err)
	}
	return health.Healthy(fmt.Sprintf("%d tools available", len(tools))).WithDetails(map[string]any{
		"tools": len(tools),
	})
}

// Ensure ListerChecker implements health.Checker
var _ health.Checker = (*ListerChecker)(nil)
