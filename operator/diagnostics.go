package operator

import (
	"github.com/czx-lab/flowrt/eventbus"
	"github.com/czx-lab/flowrt/xlog"
)

// EvtOperatorException is published on the default event bus whenever an
// operator's default error handler fires, carrying the operator's name.
const EvtOperatorException = "operator.exception"

// reportDiagnostic is the default onError handler: it never stops the
// operator, it only surfaces the error the way the actor package's own
// diagnostic sink does.
func reportDiagnostic(name string, err error) {
	xlog.Write().Sugar().Errorw("operator diagnostic",
		"operator", name,
		"error", err,
	)
	eventbus.DefaultBus.Publish(EvtOperatorException, struct {
		Name string
		Err  error
	}{Name: name, Err: err})
}
