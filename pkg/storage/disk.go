// Package storage reads and writes catalog files on a named disk.
//
// Two drivers are available:
//   - "local" — local filesystem rooted at STORAGE_LOCAL_ROOT (default)
//   - "s3"    — S3-compatible object storage (AWS S3, MinIO, R2, Spaces)
//
//	storage.Connect(ctx)
//	data, err := storage.Use("s3").Get(ctx, "catalog/products.yaml")
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/pricebook/config"
	"github.com/shashiranjanraj/pricebook/pkg/logger"
)

// ErrNotConfigured is returned by Use for a disk that was never booted.
var ErrNotConfigured = errors.New("storage: disk not configured")

// Disk is the filesystem driver interface.
type Disk interface {
	// Get returns the full content of the file at path.
	Get(ctx context.Context, path string) ([]byte, error)

	// Put writes content to path, creating parent directories as needed.
	Put(ctx context.Context, path string, content []byte) error

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Files lists the files directly inside directory.
	Files(ctx context.Context, directory string) ([]string, error)
}

var (
	managerMu   sync.RWMutex
	disks       = map[string]Disk{}
	defaultDisk = "local"
)

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
// An s3 failure is logged and leaves that disk unavailable.
func Connect(ctx context.Context) {
	managerMu.Lock()
	defer managerMu.Unlock()

	defaultDisk = config.StorageDefault()
	disks["local"] = NewLocalDisk(config.StorageLocalRoot())

	if config.StorageS3Bucket() == "" {
		return
	}
	d, err := newS3Disk(ctx, s3Options{
		Bucket:   config.StorageS3Bucket(),
		Region:   config.StorageS3Region(),
		Key:      config.StorageS3Key(),
		Secret:   config.StorageS3Secret(),
		Endpoint: config.StorageS3Endpoint(),
	})
	if err != nil {
		logger.Warn("storage: s3 disk disabled", "error", err)
		return
	}
	disks["s3"] = d
}

// Use returns the named disk. An empty name selects STORAGE_DISK.
func Use(name string) (Disk, error) {
	managerMu.RLock()
	defer managerMu.RUnlock()

	if name == "" {
		name = defaultDisk
	}
	d, ok := disks[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotConfigured, name)
	}
	return d, nil
}

// RegisterDisk plugs in a Disk under name.
func RegisterDisk(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}
