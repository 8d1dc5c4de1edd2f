package blobstoretest

import (
	"testing"

	"github.com/hupe1980/topovec/blobstore"
)

func TestMemoryStore(t *testing.T) {
	Run(t, blobstore.NewMemoryStore(), "")
}

func TestLocalStore(t *testing.T) {
	Run(t, blobstore.NewLocalStore(t.TempDir()), "run/")
}

func TestCachingStore(t *testing.T) {
	Run(t, blobstore.NewCachingStore(blobstore.NewMemoryStore(), 1<<16), "")
}
