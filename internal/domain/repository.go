package domain

import "context"

// RecordCache defines the interface for caching parsed records by text key
type RecordCache interface {
	Get(ctx context.Context, key string) (*NutritionRecord, error)
	Set(ctx context.Context, key string, record *NutritionRecord) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
