package global

import (
	"consult_crm/config"
	"consult_crm/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	Clients       string // Hồ sơ khách hàng (profile, status, comments, commitments, highlights, ...)
	BatchStates   string // Con trỏ xoay vòng batch theo (CSS user, loại batch)
	Batches       string // Lịch sử các batch đã sinh
	Verifications string // Audit xác minh commitment / critical highlight
	CheckIns      string // Chấm công check-in / check-out
	Breaks        string // Giờ nghỉ
}

// Các biến toàn cục
var Validate *validator.Validate                 // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client                // Phiên kết nối tới MongoDB
var MongoDB_ServerConfig *config.Configuration   // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{} // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
