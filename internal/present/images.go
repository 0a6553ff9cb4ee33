package present

import (
	"context"

	"decodedTx/internal/model"
)

// FallbackImageURL replaces an NFT image that failed to load.
const FallbackImageURL = "https://www.datocms-assets.com/86369/1685489960-nft.svg"

var imagePriority = []string{
	model.ImageKey256,
	model.ImageKey512,
	model.ImageKey1024,
	model.ImageKeyDefault,
}

// ResolveImageURL picks the first non-empty image in 256, 512, 1024, default order.
// It returns "" when none is present.
func ResolveImageURL(images map[string]string) string {
	for _, key := range imagePriority {
		if url := images[key]; url != "" {
			return url
		}
	}
	return ""
}

// ImageSource is the image a renderer should load for an NFT.
type ImageSource struct {
	URL         string `json:"url"`
	Substituted bool   `json:"substituted,omitempty"`
}

// OnLoadError returns the fallback source after a load failure.
// The substitution happens once: a source that is already the fallback reports false.
func (s ImageSource) OnLoadError() (ImageSource, bool) {
	if s.Substituted {
		return s, false
	}
	return ImageSource{URL: FallbackImageURL, Substituted: true}, true
}

// Prober reports whether an image URL can be loaded.
type Prober interface {
	Reachable(ctx context.Context, url string) bool
}

// CheckImages loads every NFT image through p and applies the fallback substitution to failures.
// The input view is not modified.
func CheckImages(ctx context.Context, view View, p Prober) View {
	out := view
	out.Events = make([]EventView, len(view.Events))
	for i, ev := range view.Events {
		if len(ev.NFTs) > 0 {
			nfts := make([]NFTEntry, len(ev.NFTs))
			for j, nft := range ev.NFTs {
				if !p.Reachable(ctx, nft.Image.URL) {
					nft.Image, _ = nft.Image.OnLoadError()
				}
				nfts[j] = nft
			}
			ev.NFTs = nfts
		}
		out.Events[i] = ev
	}
	return out
}
