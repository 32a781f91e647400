package services

// All amounts are int64 minor currency units. Division rounds half up so that
// the share computed at settlement and the gross derived at reporting agree.

type CommissionPolicy struct {
	RatePercent int64
}

// InstructorShare is the amount credited to the instructor's wallet for a
// sale: amount minus the platform commission.
func (p CommissionPolicy) InstructorShare(amount int64) int64 {
	return roundHalfUpDiv(amount*(100-p.RatePercent), 100)
}

// GrossFromNet recomputes the original sale amount from a net revenue credit.
func (p CommissionPolicy) GrossFromNet(net int64) int64 {
	return roundHalfUpDiv(net*100, 100-p.RatePercent)
}

// Commission is the platform's retained share, derived so that
// net + commission == gross.
func (p CommissionPolicy) Commission(net int64) int64 {
	return p.GrossFromNet(net) - net
}

func roundHalfUpDiv(num, den int64) int64 {
	return (2*num + den) / (2 * den)
}
