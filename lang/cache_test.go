package lang

import (
	"context"
	"testing"
)

func TestParse_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()
	src := "cached() echo hit\n"

	first, err := Parse(ctx, src)
	if err != nil {
		t.Fatal(err)
	}

	second, err := Parse(ctx, src)
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("identical source was parsed twice")
	}

	uncached, err := Parse(ctx, src, WithCache(false))
	if err != nil {
		t.Fatal(err)
	}

	if uncached == first {
		t.Error("WithCache(false) returned the cached program")
	}

	ClearCache()

	third, err := Parse(ctx, src)
	if err != nil {
		t.Fatal(err)
	}

	if third == first {
		t.Error("ClearCache kept the cached program")
	}
}

func TestParse_CacheSkipsErrors(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	src := "broken() echo 'x\n"

	for range 2 {
		if _, err := Parse(context.Background(), src); err == nil {
			t.Fatal("expected parse error")
		}
	}
}

func TestDigest(t *testing.T) {
	if Digest("a() b") == Digest("a() c") {
		t.Error("distinct sources share a digest")
	}

	if Digest("same") != Digest("same") {
		t.Error("digest is not deterministic")
	}
}

func BenchmarkParse(b *testing.B) {
	src := `
APP=web
build() go build -o bin/$APP ./cmd/$APP
test() go test ./... $@
docker:shell() docker compose exec $1 bash
ci() {
  build()
  test()
}
`

	b.Run("cached", func(b *testing.B) {
		ctx := context.Background()
		for b.Loop() {
			_, _ = Parse(ctx, src)
		}
	})

	b.Run("uncached", func(b *testing.B) {
		ctx := context.Background()
		for b.Loop() {
			_, _ = Parse(ctx, src, WithCache(false))
		}
	})
}
