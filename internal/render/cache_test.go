package render

import (
	"sync"
	"testing"
)

func TestCacheKey(t *testing.T) {
	opts1 := DefaultOptions()
	opts2 := DefaultOptions().WithWidth(100)
	opts3 := DefaultOptions().WithStyle("light")

	if cacheKey(opts1) == cacheKey(opts2) {
		t.Error("Different widths should produce different keys")
	}
	if cacheKey(opts1) == cacheKey(opts3) {
		t.Error("Different styles should produce different keys")
	}
	if cacheKey(opts1) != cacheKey(DefaultOptions()) {
		t.Error("Same options should produce same key")
	}
	if cacheKey(DefaultOptions().WithStyle("tokyonight")) != cacheKey(DefaultOptions().WithStyle("tokyo-night")) {
		t.Error("Aliases should share a pool")
	}
	if cacheKey(opts1) != cacheKey(opts1.WithMath(false)) {
		t.Error("Math is applied before glamour and should not split pools")
	}
}

func TestPoolGetAndPut(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()

	renderer1, err := globalPool.get(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected pool count 1, got %d", CacheSize())
	}
	globalPool.put(opts, renderer1)

	opts2 := DefaultOptions().WithWidth(100)
	renderer2, err := globalPool.get(opts2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if CacheSize() != 2 {
		t.Errorf("expected pool count 2, got %d", CacheSize())
	}
	globalPool.put(opts2, renderer2)
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("# Test $x$", opts); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent access error: %v", err)
	}
	if CacheSize() != 1 {
		t.Errorf("expected pool count 1 after concurrent access, got %d", CacheSize())
	}
}

func TestCreateRendererZeroWidth(t *testing.T) {
	renderer, err := createRenderer(DefaultOptions().WithWidth(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := renderer.Render("# Test")
	if err != nil || out == "" {
		t.Errorf("render failed: %q, %v", out, err)
	}
}

func TestCreateRendererWithInvalidStyle(t *testing.T) {
	if _, err := createRenderer(DefaultOptions().WithStyle("invalid_style_path")); err == nil {
		t.Error("expected error for invalid style")
	}
}
