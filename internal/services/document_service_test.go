package services

import (
	"testing"
)

func TestNewDocumentService(t *testing.T) {
	// Test with nil values since we can't easily mock the concrete types
	service := NewDocumentService(nil, nil)

	if service == nil {
		t.Error("NewDocumentService should return a non-nil service")
	}
	if service.storage != nil {
		t.Error("NewDocumentService should set storage to nil when passed nil")
	}
}

func TestDocumentService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &DocumentService{}

		err := service.Close()

		if err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}
