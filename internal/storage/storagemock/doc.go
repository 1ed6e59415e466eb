package storagemock

import "github.com/elecmate/mmgen/internal/storage"

var _ storage.JobRepository = &MockJobRepository{}

//go:generate mockery --case underscore --output . --outpkg storagemock --name JobRepository --srcpkg github.com/elecmate/mmgen/internal/storage --structname MockJobRepository --filename mocks.go
