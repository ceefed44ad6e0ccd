package memory

import (
	"testing"

	"trackboard/internal/ports"
	"trackboard/internal/ports/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) ports.Store { return New() })
}
