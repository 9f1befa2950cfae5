package domain

import "context"

// OrderLocker serializes read-modify-write cycles on a single order number.
type OrderLocker interface {
	Lock(ctx context.Context, orderNo string) (unlock func(), err error)
}
