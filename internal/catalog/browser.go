package catalog

import "fmt"

// HitRegion is where a click landed relative to the open detail overlay.
type HitRegion int

const (
	// RegionOutside is anything not covered by the overlay's content box (the backdrop).
	RegionOutside HitRegion = iota
	// RegionContent is the overlay's content box.
	RegionContent
	// RegionImage is the image area inside the content box; clicking it cycles variants.
	RegionImage
)

func (r HitRegion) String() string {
	switch r {
	case RegionContent:
		return "content"
	case RegionImage:
		return "image"
	default:
		return "outside"
	}
}

// ClickResult reports what a click did. Consumed clicks never reach the dismiss path.
type ClickResult struct {
	Consumed  bool
	Dismissed bool
	Variant   int
}

// Browser holds filter and selection state over an immutable item collection.
//
// At most one item is selected. Selecting replaces the previous selection wholesale and
// puts the variant cycler back at 1.
type Browser[T Item] struct {
	items      []T
	categories []string
	active     string
	variants   int

	selected *selection[T]
}

type selection[T Item] struct {
	item    T
	variant Cycler
}

// NewBrowser builds a browser over items. variants is the number of alternate images each
// item carries (6 for characters, 1 for map locations).
func NewBrowser[T Item](items []T, variants int) *Browser[T] {
	cp := make([]T, len(items))
	copy(cp, items)
	return &Browser[T]{
		items:      cp,
		categories: Categories(cp),
		active:     AllCategory,
		variants:   variants,
	}
}

func (b *Browser[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)
	return out
}

func (b *Browser[T]) Categories() []string {
	out := make([]string, len(b.categories))
	copy(out, b.categories)
	return out
}

func (b *Browser[T]) ActiveCategory() string { return b.active }

// SetFilter changes the active category. Only members of Categories() are accepted so the
// active category can never fall outside the available set.
func (b *Browser[T]) SetFilter(category string) error {
	if !containsString(b.categories, category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	b.active = category
	return nil
}

// Visible returns the items passing the active filter.
func (b *Browser[T]) Visible() []T {
	return Filter(b.items, b.active)
}

// Select opens the detail overlay for id. The variant index always restarts at 1.
func (b *Browser[T]) Select(id string) error {
	for _, it := range b.items {
		if it.ItemID() == id {
			b.selected = &selection[T]{item: it, variant: NewCycler(b.variants)}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownItem, id)
}

func (b *Browser[T]) Selected() (T, bool) {
	if b.selected == nil {
		var zero T
		return zero, false
	}
	return b.selected.item, true
}

func (b *Browser[T]) HasSelection() bool { return b.selected != nil }

// VariantIndex is the 1-based image index of the open overlay, or 0 with nothing selected.
func (b *Browser[T]) VariantIndex() int {
	if b.selected == nil {
		return 0
	}
	return b.selected.variant.Index()
}

// CycleVariant advances the open overlay's image. It is a no-op (returning 0) with nothing
// selected.
func (b *Browser[T]) CycleVariant() int {
	if b.selected == nil {
		return 0
	}
	return b.selected.variant.Next()
}

// Dismiss closes the overlay, discarding its variant state.
func (b *Browser[T]) Dismiss() {
	b.selected = nil
}

// Click routes a hit-tested click. Content and image clicks are consumed by the overlay;
// outside clicks dismiss it.
func (b *Browser[T]) Click(region HitRegion) ClickResult {
	switch region {
	case RegionImage:
		return ClickResult{Consumed: true, Variant: b.CycleVariant()}
	case RegionContent:
		return ClickResult{Consumed: true, Variant: b.VariantIndex()}
	default:
		wasOpen := b.selected != nil
		b.Dismiss()
		return ClickResult{Dismissed: wasOpen}
	}
}
