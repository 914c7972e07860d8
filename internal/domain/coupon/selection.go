package coupon

// Selection is the coupon currently applied to a cart. The zero value is
// NoneSelected.
type Selection struct {
	coupon *Coupon
}

// Selected returns a Selection holding c without checking eligibility. It is
// meant for restoring persisted state.
func Selected(c Coupon) Selection {
	return Selection{coupon: &c}
}

// Select moves to Selected(c) when c is eligible for total. Otherwise the
// receiver is returned unchanged together with the eligibility error.
func (s Selection) Select(c Coupon, total int64) (Selection, error) {
	if err := CheckEligibility(c, total); err != nil {
		return s, err
	}
	return Selected(c), nil
}

// Clear returns the NoneSelected state.
func (Selection) Clear() Selection {
	return Selection{}
}

// Coupon returns the selected coupon, or nil when none is selected.
func (s Selection) Coupon() *Coupon {
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// IsSelected reports whether a coupon is selected.
func (s Selection) IsSelected() bool {
	return s.coupon != nil
}

// Code returns the selected code, or "" when none is selected.
func (s Selection) Code() string {
	if s.coupon == nil {
		return ""
	}
	return s.coupon.Code
}

// Delete removes the coupon with code from coupons. When sel refers to the
// same code, the returned selection is cleared as part of the same call.
// The input slice is not modified.
func Delete(coupons []Coupon, sel Selection, code string) ([]Coupon, Selection) {
	out := make([]Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.Code != code {
			out = append(out, c)
		}
	}
	if sel.Code() == code {
		sel = sel.Clear()
	}
	return out, sel
}
