package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	useCaseSettings "go-wa-dispatch/src/application/usecases/settings"
	domainErrors "go-wa-dispatch/src/domain/errors"
	logger "go-wa-dispatch/src/infrastructure/logger"
	"go-wa-dispatch/src/infrastructure/rest/controllers"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

type ISettingsController interface {
	GetSettings(ctx *gin.Context)
	UpdateSettings(ctx *gin.Context)
}

type SettingsController struct {
	settingsUseCase useCaseSettings.ISettingsUseCase
	Logger          *logger.Logger
}

func NewSettingsController(settingsUseCase useCaseSettings.ISettingsUseCase, loggerInstance *logger.Logger) ISettingsController {
	return &SettingsController{
		settingsUseCase: settingsUseCase,
		Logger:          loggerInstance,
	}
}

// GetSettings renders the effective settings as one JSON document. Dotted
// keys become nested objects and stored JSON arrays are emitted as arrays.
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	snapshot, err := c.settingsUseCase.Snapshot()
	if err != nil {
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.RepositoryError))
		return
	}
	document, err := BuildDocument(snapshot)
	if err != nil {
		c.Logger.Error("Error building settings document", zap.Error(err))
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.UnknownError))
		return
	}
	ctx.Data(http.StatusOK, "application/json; charset=utf-8", document)
}

func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	var request map[string]interface{}
	if err := controllers.BindJSON(ctx, &request); err != nil {
		c.Logger.Error("Error binding JSON for settings update", zap.Error(err))
		_ = ctx.Error(domainErrors.NewAppError(err, domainErrors.ValidationError))
		return
	}
	values := Flatten(request)
	if len(values) == 0 {
		_ = ctx.Error(domainErrors.NewAppError(errors.New("no settings provided"), domainErrors.ValidationError))
		return
	}
	if err := c.settingsUseCase.Update(values); err != nil {
		_ = ctx.Error(err)
		return
	}
	c.GetSettings(ctx)
}

// BuildDocument turns the flat key/value snapshot into nested JSON.
func BuildDocument(snapshot map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	document := []byte(`{}`)
	var err error
	for _, key := range keys {
		value := snapshot[key]
		if strings.HasPrefix(strings.TrimSpace(value), "[") && json.Valid([]byte(value)) {
			document, err = sjson.SetRawBytes(document, key, []byte(value))
		} else {
			document, err = sjson.SetBytes(document, key, value)
		}
		if err != nil {
			return nil, err
		}
	}
	return document, nil
}

// Flatten joins nested objects into dotted keys, the inverse of
// BuildDocument.
func Flatten(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	flattenInto("", values, out)
	return out
}

func flattenInto(prefix string, values map[string]interface{}, out map[string]interface{}) {
	for key, value := range values {
		if prefix != "" {
			key = prefix + "." + key
		}
		if child, ok := value.(map[string]interface{}); ok {
			flattenInto(key, child, out)
			continue
		}
		out[key] = value
	}
}
