package query

// Re-export read models from readmodel package so API callers only import query
import "github.com/example/ec-chatbot/internal/readmodel"

type ProductReadModel = readmodel.ProductReadModel
type OrderReadModel = readmodel.OrderReadModel
type OrderItemReadModel = readmodel.OrderItemReadModel
type InventoryItemReadModel = readmodel.InventoryItemReadModel
type DistributionCenterReadModel = readmodel.DistributionCenterReadModel
