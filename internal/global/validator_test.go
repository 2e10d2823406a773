package global

import (
	"testing"

	"consult_crm/config"

	"github.com/stretchr/testify/assert"
)

type sampleInput struct {
	Text   string `validate:"required,not_blank,no_xss"`
	Flag   string `validate:"omitempty,crm_flag"`
	Status string `validate:"omitempty,crm_item_status"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sampleInput{Text: "Gọi lại khách lúc 10h", Flag: "red"}))
	assert.Error(t, ValidateStruct(sampleInput{Text: "   "}), "chuỗi toàn khoảng trắng phải bị từ chối")
	assert.Error(t, ValidateStruct(sampleInput{Text: "<script>alert(1)</script>"}))
	assert.Error(t, ValidateStruct(sampleInput{Text: "ok", Flag: "blue"}))
	assert.NoError(t, ValidateStruct(sampleInput{Text: "ok", Status: "not catered"}))
	assert.Error(t, ValidateStruct(sampleInput{Text: "ok", Status: "pending"}))
}

type statusInput struct {
	Status string `validate:"omitempty,crm_client_status"`
}

func TestValidateStruct_ClientStatus(t *testing.T) {
	prev := MongoDB_ServerConfig
	t.Cleanup(func() { MongoDB_ServerConfig = prev })

	MongoDB_ServerConfig = &config.Configuration{}
	assert.NoError(t, ValidateStruct(statusInput{Status: "bất kỳ"}), "chưa cấu hình thì nhận mọi label")

	MongoDB_ServerConfig = &config.Configuration{ClientStatusLabels: "Docs Pending, Lodged ,Granted"}
	assert.NoError(t, ValidateStruct(statusInput{Status: "Lodged"}))
	assert.NoError(t, ValidateStruct(statusInput{Status: DefaultClientStatus}))
	assert.Error(t, ValidateStruct(statusInput{Status: "Refused"}))
}
