package storage

import (
	"context"
	"strings"
	"testing"
)

func newTestResolver(t *testing.T, publicBaseURL string) ImageURLResolver {
	t.Helper()

	resolver, err := NewCloudflareR2Resolver(CloudflareR2Config{
		AccountID:       "test-account",
		AccessKeyID:     "test-key",
		SecretAccessKey: "test-secret",
		BucketName:      "portal-images",
		PublicBaseURL:   publicBaseURL,
	})
	if err != nil {
		t.Fatalf("NewCloudflareR2Resolver: %v", err)
	}
	return resolver
}

func TestResolveURLPublicBucket(t *testing.T) {
	resolver := newTestResolver(t, "https://images.example.com/")

	got, err := resolver.ResolveURL(context.Background(), "avatars/abc def")
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	if got != "https://images.example.com/avatars%2Fabc%20def" {
		t.Errorf("url = %q", got)
	}
}

func TestResolveURLPrivateBucketSignsLocally(t *testing.T) {
	resolver := newTestResolver(t, "")

	got, err := resolver.ResolveURL(context.Background(), "avatars/abc")
	if err != nil {
		t.Fatalf("ResolveURL: %v", err)
	}
	for _, want := range []string{"test-account.r2.cloudflarestorage.com", "portal-images", "avatars/abc", "X-Amz-Signature="} {
		if !strings.Contains(got, want) {
			t.Errorf("url %q missing %q", got, want)
		}
	}
}

func TestNewCloudflareR2ResolverRejectsIncompleteConfig(t *testing.T) {
	_, err := NewCloudflareR2Resolver(CloudflareR2Config{AccountID: "a"})
	if err == nil {
		t.Fatal("want error for incomplete configuration")
	}
}
