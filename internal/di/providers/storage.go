package providers

import (
	"github.com/samber/do/v2"

	"github.com/barkeepapp/barkeep-server/internal/config"
	"github.com/barkeepapp/barkeep-server/internal/logger"
	"github.com/barkeepapp/barkeep-server/internal/media/images"
)

// ProvideUploads provides the image asset storage.
func ProvideUploads(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.Storage.UploadsPath)
	if err != nil {
		return nil, err
	}

	log.Info("Uploads storage ready", "path", cfg.Storage.UploadsPath)

	return storage, nil
}
