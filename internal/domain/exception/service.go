package exception

import "context"

// Service covers the manual exception workflow: employees raise them,
// approvers close them. Automatic exceptions come from the reconciler.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (Response, error)
	Get(ctx context.Context, id string) (Response, error)
	List(ctx context.Context, filter Filter) (ListResponse, error)
	Approve(ctx context.Context, id, resolvedBy string) error
	Reject(ctx context.Context, id, resolvedBy string) error
}
