// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/store_client.go -destination=store_client_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/order_repository.go -destination=order_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/purchase_service.go -destination=purchase_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/catalog_repository.go -destination=catalog_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/catalog_service.go -destination=catalog_service_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/cache.go -destination=cache_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/taxonomy.go -destination=taxonomy_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/tasks.go -destination=tasks_mock.go -package=mocks
