package handler

import (
	householddomain "rep-ledger-go/internal/domain/household"
	ledgerdomain "rep-ledger-go/internal/domain/ledger"
	"rep-ledger-go/pkg/logger"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Handlers struct {
	Households *householddomain.Service
	Ledger     *ledgerdomain.Service
	log        logger.Logger
}

func New(households *householddomain.Service, ledger *ledgerdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Households: households,
		Ledger:     ledger,
		log:        log,
	}
}
