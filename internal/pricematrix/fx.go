package pricematrix

import (
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/repository"
	"github.com/railzwaylabs/pricematrix/internal/pricematrix/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pricematrix.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
