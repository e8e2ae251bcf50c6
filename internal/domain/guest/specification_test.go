package guest

import "testing"

func specTestGuest(t *testing.T, id string, stage Stage) *Guest {
	t.Helper()
	g, err := NewGuest(id, PersonalInfo{Name: "Li Si", Phone: "13900139000"})
	if err != nil {
		t.Fatalf("NewGuest() error = %v", err)
	}
	advanceTo(t, g, stage)
	return g
}

func TestStageSpecification(t *testing.T) {
	g := specTestGuest(t, "g1", StageBooking)

	if !ByStage(StageBooking).IsSatisfiedBy(g) {
		t.Error("ByStage(booking) not satisfied")
	}
	if ByStage(StageFeedback).IsSatisfiedBy(g) {
		t.Error("ByStage(feedback) satisfied unexpectedly")
	}
}

func TestCompositeSpecifications(t *testing.T) {
	g := specTestGuest(t, "g1", StageEvaluation)

	and := And(ByStage(StageEvaluation), ByLoyaltyLevel(LoyaltyBronze), Active())
	if !and.IsSatisfiedBy(g) {
		t.Error("And() not satisfied")
	}

	or := Or(ByStage(StageFeedback), ByLoyaltyLevel(LoyaltyBronze))
	if !or.IsSatisfiedBy(g) {
		t.Error("Or() not satisfied")
	}

	if Not(Active()).IsSatisfiedBy(g) {
		t.Error("Not(Active) satisfied for live guest")
	}

	// Empty composites: And is vacuously true, Or accepts everything.
	if !And().IsSatisfiedBy(g) {
		t.Error("empty And() not satisfied")
	}
	if !Or().IsSatisfiedBy(g) {
		t.Error("empty Or() not satisfied")
	}
}

func TestActiveSpecification(t *testing.T) {
	g := specTestGuest(t, "g1", StageAwareness)
	if err := g.MarkDeleted(); err != nil {
		t.Fatalf("MarkDeleted() error = %v", err)
	}

	if Active().IsSatisfiedBy(g) {
		t.Error("Active() satisfied for deleted guest")
	}
	if !Not(Active()).IsSatisfiedBy(g) {
		t.Error("Not(Active) not satisfied for deleted guest")
	}
}

func TestPhoneSpecification(t *testing.T) {
	g := specTestGuest(t, "g1", StageAwareness)

	if !ByPhone("13900139000").IsSatisfiedBy(g) {
		t.Error("ByPhone(match) not satisfied")
	}
	if ByPhone("13800138000").IsSatisfiedBy(g) {
		t.Error("ByPhone(other) satisfied unexpectedly")
	}
}

func TestMinLifetimeValueSpecification(t *testing.T) {
	g := specTestGuest(t, "g1", StageBooking)
	factory := g.EventFactory(EventSource{Kind: SourceUser})
	if err := g.RecordFulfillment(factory.PaymentSucceeded(750)); err != nil {
		t.Fatalf("RecordFulfillment() error = %v", err)
	}

	if !MinLifetimeValue(500).IsSatisfiedBy(g) {
		t.Error("MinLifetimeValue(500) not satisfied at 750")
	}
	if MinLifetimeValue(1000).IsSatisfiedBy(g) {
		t.Error("MinLifetimeValue(1000) satisfied at 750")
	}
}

func TestFromCriteria(t *testing.T) {
	g := specTestGuest(t, "g1", StageEvaluation)

	spec := FromCriteria(Criteria{Stage: StageEvaluation, LoyaltyLevel: LoyaltyBronze})
	if !spec.IsSatisfiedBy(g) {
		t.Error("criteria spec not satisfied")
	}

	spec = FromCriteria(Criteria{Stage: StageEvaluation, RiskLevel: RiskHigh})
	if spec.IsSatisfiedBy(g) {
		t.Error("criteria spec satisfied despite risk mismatch")
	}

	// Deleted guests are excluded unless asked for.
	if err := g.MarkDeleted(); err != nil {
		t.Fatalf("MarkDeleted() error = %v", err)
	}
	if FromCriteria(Criteria{}).IsSatisfiedBy(g) {
		t.Error("default criteria matched a deleted guest")
	}
	if !FromCriteria(Criteria{IncludeDeleted: true}).IsSatisfiedBy(g) {
		t.Error("IncludeDeleted criteria did not match a deleted guest")
	}
}
