package domain

// FatWeight returns weightKg * fatPct / 100, or nil when fatPct is absent.
func FatWeight(weightKg float64, fatPct *float64) *float64 {
	if fatPct == nil {
		return nil
	}
	v := weightKg * *fatPct / 100
	return &v
}

// BMI returns weight / height(m)^2. Returns nil if either input is missing or
// the height is not positive.
func BMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *heightCm <= 0 {
		return nil
	}
	m := *heightCm / 100
	v := *weightKg / (m * m)
	return &v
}
