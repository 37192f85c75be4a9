package store

import "errors"

var (
	ErrStockLookup   = errors.New("stock lookup failed")
	ErrCatalogLookup = errors.New("catalog lookup failed")
	ErrStockExceeded = errors.New("requested quantity exceeds stock")
	ErrEntryNotFound = errors.New("cart entry not found")
)

// User-facing notification messages.
const (
	MsgAddFailed     = "Erro na adição do produto"
	MsgStockExceeded = "Quantidade solicitada fora de estoque"
	MsgRemoveFailed  = "Erro na remoção do produto"
	MsgUpdateFailed  = "Erro na alteração de quantidade do produto"
)

type operation string

const (
	opAdd    operation = "add"
	opRemove operation = "remove"
	opUpdate operation = "update"
)

// failureMessage picks the notification for a failed operation.
func failureMessage(op operation, err error) string {
	if errors.Is(err, ErrStockExceeded) {
		return MsgStockExceeded
	}
	switch op {
	case opAdd:
		return MsgAddFailed
	case opRemove:
		return MsgRemoveFailed
	default:
		return MsgUpdateFailed
	}
}
