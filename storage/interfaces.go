package storage

import "github.com/BenoitGuillaud/budapest-market/models"

// PreparedWriter is the interface any prepared-dataset backend must satisfy.
type PreparedWriter interface {
	WritePrepared(ds *models.PreparedDataset) error
	Close() error
}
