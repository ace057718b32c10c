package notify

import "context"

type Sender interface {
	SendReport(ctx context.Context, report Report) error
}
