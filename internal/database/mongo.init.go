package database

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"consult_crm/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureCollections đảm bảo các collection cần thiết tồn tại trong database.
func EnsureCollections(db *mongo.Database, names []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	for _, name := range names {
		if name == "" || have[name] {
			continue
		}
		logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", name)
		if err := db.CreateCollection(ctx, name); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", db.Name())
	return nil
}

// indexSpec mô tả một index sinh ra từ tag `index` của model
type indexSpec struct {
	Name   string
	Keys   bson.D
	Unique bool
	Sparse bool
}

// parseIndexTag tách tag index thành các cấu hình key:value.
// Ví dụ: `index:"single:1,compound:crm_client_owner_created"`.
func parseIndexTag(tag string) map[string][]string {
	result := map[string][]string{}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 {
			result[kv[0]] = append(result[kv[0]], kv[1])
		} else {
			result[kv[0]] = append(result[kv[0]], "")
		}
	}
	return result
}

// buildIndexSpecs đọc tag `index` trên các field của model và trả về danh sách index cần tạo.
// Hỗ trợ: single:1|-1, unique[, sparse], compound:<tên group> (thứ tự theo thứ tự field).
// Group compound có hậu tố "_unique" sẽ là unique index.
func buildIndexSpecs(model interface{}) []indexSpec {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	var specs []indexSpec
	compoundOrder := []string{}
	compounds := map[string]*indexSpec{}

	for i := 0; i < modelType.NumField(); i++ {
		field := modelType.Field(i)
		tag, ok := field.Tag.Lookup("index")
		if !ok {
			continue
		}
		bsonField := strings.Split(field.Tag.Get("bson"), ",")[0]
		if bsonField == "" || bsonField == "-" {
			continue
		}

		cfg := parseIndexTag(tag)
		_, sparse := cfg["sparse"]

		if orders, ok := cfg["single"]; ok {
			order := 1
			if len(orders) > 0 && orders[0] == "-1" {
				order = -1
			}
			specs = append(specs, indexSpec{
				Name: bsonField + "_single",
				Keys: bson.D{{Key: bsonField, Value: order}},
			})
		}
		if _, ok := cfg["unique"]; ok {
			specs = append(specs, indexSpec{
				Name:   bsonField + "_unique",
				Keys:   bson.D{{Key: bsonField, Value: 1}},
				Unique: true,
				Sparse: sparse,
			})
		}
		for _, group := range cfg["compound"] {
			spec, exists := compounds[group]
			if !exists {
				spec = &indexSpec{Name: group, Unique: strings.HasSuffix(group, "_unique")}
				compounds[group] = spec
				compoundOrder = append(compoundOrder, group)
			}
			spec.Keys = append(spec.Keys, bson.E{Key: bsonField, Value: 1})
			if sparse {
				spec.Sparse = true
			}
		}
	}

	sort.Strings(compoundOrder)
	for _, g := range compoundOrder {
		specs = append(specs, *compounds[g])
	}
	return specs
}

// CreateIndexes tạo các index định nghĩa qua tag của model cho collection.
// Index đã tồn tại cùng tên được giữ nguyên.
func CreateIndexes(ctx context.Context, collection *mongo.Collection, model interface{}) error {
	log := logger.WithModule("database").WithField("collection", collection.Name())

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		return fmt.Errorf("không thể lấy danh sách index: %w", err)
	}
	defer cursor.Close(ctx)

	existing := map[string]bool{}
	for cursor.Next(ctx) {
		var info bson.M
		if err := cursor.Decode(&info); err != nil {
			return fmt.Errorf("không thể giải mã thông tin index: %w", err)
		}
		if name, ok := info["name"].(string); ok {
			existing[name] = true
		}
	}

	for _, spec := range buildIndexSpecs(model) {
		if existing[spec.Name] {
			continue
		}
		opts := options.Index().SetName(spec.Name)
		if spec.Unique {
			opts = opts.SetUnique(true)
		}
		if spec.Sparse {
			opts = opts.SetSparse(true)
		}
		if _, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: spec.Keys, Options: opts}); err != nil {
			return fmt.Errorf("không thể tạo index %s: %w", spec.Name, err)
		}
		log.Infof("Đã tạo index: %s", spec.Name)
	}
	return nil
}
