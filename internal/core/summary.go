package core

// Summary counts what a run produced.
type Summary struct {
	TotalRows        int
	Accepted         int
	Rejected         int
	Customers        int
	Suppliers        int
	Employees        int
	Administrators   int
	CreditRestricted int
	Individuals      int
	Organizations    int
}

// Add folds one row outcome into the summary.
func (s *Summary) Add(result RowResult) {
	s.TotalRows++
	if !result.Accepted() {
		s.Rejected++
		return
	}
	s.Accepted++

	rec := result.Record
	if rec.IsCustomer {
		s.Customers++
	}
	if rec.IsSupplier {
		s.Suppliers++
	}
	if rec.IsEmployee {
		s.Employees++
	}
	if rec.IsAdministrator {
		s.Administrators++
	}
	if rec.IsCreditRestricted {
		s.CreditRestricted++
	}
	switch rec.Kind {
	case Organization:
		s.Organizations++
	default:
		s.Individuals++
	}
}
