package guest

// Specification encapsulates a business rule for querying guest
// aggregates. Specifications compose with And, Or and Not.
type Specification interface {
	// IsSatisfiedBy checks if the given guest satisfies this specification.
	IsSatisfiedBy(g *Guest) bool
}

// CompositeSpecification provides base functionality for composite
// specifications.
type CompositeSpecification struct {
	specs []Specification
}

// AndSpecification represents a logical AND of multiple specifications.
type AndSpecification struct {
	CompositeSpecification
}

// And creates a specification satisfied only when all children are.
func And(specs ...Specification) *AndSpecification {
	return &AndSpecification{
		CompositeSpecification: CompositeSpecification{specs: specs},
	}
}

// IsSatisfiedBy returns true if all child specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(g *Guest) bool {
	for _, spec := range s.specs {
		if !spec.IsSatisfiedBy(g) {
			return false
		}
	}
	return true
}

// OrSpecification represents a logical OR of multiple specifications.
type OrSpecification struct {
	CompositeSpecification
}

// Or creates a specification satisfied when any child is.
func Or(specs ...Specification) *OrSpecification {
	return &OrSpecification{
		CompositeSpecification: CompositeSpecification{specs: specs},
	}
}

// IsSatisfiedBy returns true if any child specification is satisfied.
func (s *OrSpecification) IsSatisfiedBy(g *Guest) bool {
	if len(s.specs) == 0 {
		return true
	}
	for _, spec := range s.specs {
		if spec.IsSatisfiedBy(g) {
			return true
		}
	}
	return false
}

// NotSpecification represents a logical NOT of a specification.
type NotSpecification struct {
	spec Specification
}

// Not creates a specification negating the given one.
func Not(spec Specification) *NotSpecification {
	return &NotSpecification{spec: spec}
}

// IsSatisfiedBy returns the inverse of the wrapped specification.
func (s *NotSpecification) IsSatisfiedBy(g *Guest) bool {
	return !s.spec.IsSatisfiedBy(g)
}

// StageSpecification matches guests currently in a specific stage.
type StageSpecification struct {
	stage Stage
}

// ByStage creates a specification for guests in the given stage.
func ByStage(stage Stage) *StageSpecification {
	return &StageSpecification{stage: stage}
}

// IsSatisfiedBy returns true if the guest is in the specified stage.
func (s *StageSpecification) IsSatisfiedBy(g *Guest) bool {
	return g.CurrentStage() == s.stage
}

// LoyaltySpecification matches guests at a specific loyalty tier.
type LoyaltySpecification struct {
	level LoyaltyLevel
}

// ByLoyaltyLevel creates a specification for guests at the given tier.
func ByLoyaltyLevel(level LoyaltyLevel) *LoyaltySpecification {
	return &LoyaltySpecification{level: level}
}

// IsSatisfiedBy returns true if the guest holds the specified tier.
func (s *LoyaltySpecification) IsSatisfiedBy(g *Guest) bool {
	return g.Tags().LoyaltyLevel == s.level
}

// RiskSpecification matches guests at a specific risk level.
type RiskSpecification struct {
	risk RiskLevel
}

// ByRiskLevel creates a specification for guests at the given risk level.
func ByRiskLevel(risk RiskLevel) *RiskSpecification {
	return &RiskSpecification{risk: risk}
}

// IsSatisfiedBy returns true if the guest carries the specified risk level.
func (s *RiskSpecification) IsSatisfiedBy(g *Guest) bool {
	return g.Tags().RiskLevel == s.risk
}

// SegmentSpecification matches guests in a specific value segment.
type SegmentSpecification struct {
	segment ValueSegment
}

// ByValueSegment creates a specification for guests in the given segment.
func ByValueSegment(segment ValueSegment) *SegmentSpecification {
	return &SegmentSpecification{segment: segment}
}

// IsSatisfiedBy returns true if the guest is in the specified segment.
func (s *SegmentSpecification) IsSatisfiedBy(g *Guest) bool {
	return g.Tags().ValueSegment == s.segment
}

// PhoneSpecification matches a guest by exact phone number.
type PhoneSpecification struct {
	phone string
}

// ByPhone creates a specification matching the given phone number.
func ByPhone(phone string) *PhoneSpecification {
	return &PhoneSpecification{phone: phone}
}

// IsSatisfiedBy returns true if the guest's phone matches.
func (s *PhoneSpecification) IsSatisfiedBy(g *Guest) bool {
	return g.PersonalInfo().Phone == s.phone
}

// ActiveSpecification matches guests that are not soft-deleted.
type ActiveSpecification struct{}

// Active creates a specification for non-deleted guests.
func Active() *ActiveSpecification {
	return &ActiveSpecification{}
}

// IsSatisfiedBy returns true if the guest is not deleted.
func (s *ActiveSpecification) IsSatisfiedBy(g *Guest) bool {
	return !g.IsDeleted()
}

// LifetimeValueSpecification matches guests whose lifetime value meets a
// minimum.
type LifetimeValueSpecification struct {
	min float64
}

// MinLifetimeValue creates a specification for guests who have spent at
// least the given amount.
func MinLifetimeValue(min float64) *LifetimeValueSpecification {
	return &LifetimeValueSpecification{min: min}
}

// IsSatisfiedBy returns true if the guest's lifetime value meets the
// minimum.
func (s *LifetimeValueSpecification) IsSatisfiedBy(g *Guest) bool {
	return g.Metrics().LifetimeValue >= s.min
}

// FromCriteria builds a composed specification from a flat criteria
// filter. Unset fields add no constraint.
func FromCriteria(c Criteria) Specification {
	specs := make([]Specification, 0, 6)
	if !c.IncludeDeleted {
		specs = append(specs, Active())
	}
	if c.Stage != "" {
		specs = append(specs, ByStage(c.Stage))
	}
	if c.LoyaltyLevel != "" {
		specs = append(specs, ByLoyaltyLevel(c.LoyaltyLevel))
	}
	if c.RiskLevel != "" {
		specs = append(specs, ByRiskLevel(c.RiskLevel))
	}
	if c.ValueSegment != "" {
		specs = append(specs, ByValueSegment(c.ValueSegment))
	}
	if c.MinLifetimeValue > 0 {
		specs = append(specs, MinLifetimeValue(c.MinLifetimeValue))
	}
	return And(specs...)
}
