package entity

import "sync"

// BuyNowContext carries a single line staged by a "buy now" action. It
// replaces the shared cart as the checkout snapshot without touching it.
//
// The zero value is an empty context. Consume hands the staged line out
// exactly once.
type BuyNowContext struct {
	mu   sync.Mutex
	item *CartLine
}

func NewBuyNowContext(item *CartLine) *BuyNowContext {
	bn := &BuyNowContext{}
	if item != nil {
		bn.Set(*item)
	}
	return bn
}

func (b *BuyNowContext) Set(item CartLine) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.item = &item
}

// Item returns a copy of the staged line without consuming it. A nil
// receiver behaves like an empty context.
func (b *BuyNowContext) Item() *CartLine {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.item == nil {
		return nil
	}
	item := *b.item
	return &item
}

// Consume returns the staged line and empties the context.
func (b *BuyNowContext) Consume() (CartLine, bool) {
	if b == nil {
		return CartLine{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.item == nil {
		return CartLine{}, false
	}
	item := *b.item
	b.item = nil
	return item, true
}

func (b *BuyNowContext) Clear() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.item = nil
}

func (b *BuyNowContext) Active() bool {
	return b.Item() != nil
}
