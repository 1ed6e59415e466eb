package generatormock

import "github.com/elecmate/mmgen/internal/generator"

var _ generator.Generator = &MockGenerator{}

//go:generate mockery --case underscore --output . --outpkg generatormock --name Generator --srcpkg github.com/elecmate/mmgen/internal/generator --structname MockGenerator --filename mocks.go
