package sampledata

import (
	"testing"

	"github.com/decker502/lottie/internal/bodymovin"
)

func TestBundledAnimationsParse(t *testing.T) {
	names := Names()
	if len(names) == 0 {
		t.Fatal("Expected bundled animations, got none")
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			data, err := ReadFile(name)
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}

			comp, err := bodymovin.Parse(data)
			if err != nil {
				t.Fatalf("Failed to parse %s: %v", name, err)
			}
			if comp.Frames() <= 0 {
				t.Errorf("Expected a positive frame span, got %v", comp.Frames())
			}
			if comp.Width <= 0 || comp.Height <= 0 {
				t.Errorf("Expected a positive design size, got %dx%d", comp.Width, comp.Height)
			}
			t.Logf("✓ %s: %.0f frames @ %.0f fps, %dx%d",
				name, comp.Frames(), comp.FrameRate, comp.Width, comp.Height)
		})
	}
}

func TestBundledLoaderMarkers(t *testing.T) {
	data, err := ReadFile("loader.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	comp, err := bodymovin.Parse(data)
	if err != nil {
		t.Fatalf("Failed to parse loader.json: %v", err)
	}

	for _, name := range []string{"bounce", "settle"} {
		if _, ok := comp.Marker(name); !ok {
			t.Errorf("Expected marker %q in loader.json", name)
		}
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile("nope.json"); err == nil {
		t.Error("Expected an error for a missing bundled animation")
	}
}
