package basesvc

import (
	"consult_crm/internal/common"

	"go.mongodb.org/mongo-driver/bson"
)

// Actor là người thực hiện thao tác (lấy từ session)
type Actor struct {
	Name    string
	IsAdmin bool
}

// OwnerScope thêm điều kiện cssValue vào filter khi actor không phải admin
func (a Actor) OwnerScope(filter bson.M) bson.M {
	if !a.IsAdmin {
		filter["cssValue"] = a.Name
	}
	return filter
}

// CanAccess cho biết actor được thao tác trên dữ liệu của owner hay không
func (a Actor) CanAccess(owner string) bool {
	return a.IsAdmin || a.Name == owner
}

// RequireAdmin trả ErrForbidden nếu actor không phải admin
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin {
		return common.ErrForbidden
	}
	return nil
}
