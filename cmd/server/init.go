package main

import (
	"context"
	"time"

	"consult_crm/config"
	attendancemodels "consult_crm/internal/api/attendance/models"
	batchmodels "consult_crm/internal/api/batch/models"
	clientmodels "consult_crm/internal/api/client/models"
	verimodels "consult_crm/internal/api/verification/models"
	"consult_crm/internal/database"
	"consult_crm/internal/global"

	"github.com/sirupsen/logrus"
)

// Hàm khởi tạo các biến toàn cục
func InitGlobal() {
	initColNames()         // Khởi tạo tên các collection trong database
	initValidator()        // Khởi tạo validator
	initConfig()           // Khởi tạo cấu hình server
	initDatabase_MongoDB() // Khởi tạo kết nối database
}

// Hàm khởi tạo tên các collection trong database (tiền tố crm_)
func initColNames() {
	global.MongoDB_ColNames.Clients = "crm_clients"
	global.MongoDB_ColNames.BatchStates = "crm_batch_states"
	global.MongoDB_ColNames.Batches = "crm_batches"
	global.MongoDB_ColNames.Verifications = "crm_verifications"
	global.MongoDB_ColNames.CheckIns = "crm_checkins"
	global.MongoDB_ColNames.Breaks = "crm_breaks"

	logrus.Info("Initialized collection names")
}

// collectionNames trả về tên mọi collection đã khởi tạo
func collectionNames() []string {
	c := global.MongoDB_ColNames
	return []string{c.Clients, c.BatchStates, c.Batches, c.Verifications, c.CheckIns, c.Breaks}
}

// Hàm khởi tạo validator (no_xss, not_blank, crm_flag, crm_item_status)
func initValidator() {
	global.InitValidator()
	logrus.Info("Initialized validator")
}

// Hàm khởi tạo cấu hình server
func initConfig() {
	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatalf("Failed to initialize config: %v", err)
	}
	global.MongoDB_ServerConfig = cfg
	logrus.Info("Initialized server config")
}

// Hàm khởi tạo kết nối database, collection và index
func initDatabase_MongoDB() {
	var err error
	global.MongoDB_Session, err = database.GetInstance(global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to get database instance: %v", err)
	}
	logrus.Info("Connected to MongoDB")

	db := global.MongoDB_Session.Database(global.MongoDB_ServerConfig.MongoDB_DBName)
	if err := database.EnsureCollections(db, collectionNames()); err != nil {
		logrus.Fatalf("Failed to ensure collections: %v", err)
	}
	logrus.Info("Ensured database and collections")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	models := map[string]interface{}{
		global.MongoDB_ColNames.Clients:       clientmodels.Client{},
		global.MongoDB_ColNames.BatchStates:   batchmodels.BatchState{},
		global.MongoDB_ColNames.Batches:       batchmodels.Batch{},
		global.MongoDB_ColNames.Verifications: verimodels.Verification{},
		global.MongoDB_ColNames.CheckIns:      attendancemodels.CheckIn{},
		global.MongoDB_ColNames.Breaks:        attendancemodels.Break{},
	}
	for name, model := range models {
		if err := database.CreateIndexes(ctx, db.Collection(name), model); err != nil {
			logrus.Errorf("Failed to create indexes for %s: %v", name, err)
		}
	}
	logrus.Info("Ensured indexes")
}
