package loans

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblioteca-backend/internal/library/books"
	"biblioteca-backend/internal/platform/apierr"
)

// fakeStore implements loanStore in memory with the same conditional
// semantics the SQL store applies inside its transactions: the book
// status check and transition happen under one lock, so the
// check-then-act race is observable if the service ever reintroduces
// it.
type fakeStore struct {
	mu         sync.Mutex
	nextLoanID int64
	bookStatus map[int64]string
	loans      map[int64]*Loan
	fines      []FineSpec
	fineLoans  []int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextLoanID: 1,
		bookStatus: make(map[int64]string),
		loans:      make(map[int64]*Loan),
	}
}

func (f *fakeStore) ExecCreateLoan(_ context.Context, m *Loan) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	status, ok := f.bookStatus[m.BookID]
	if !ok {
		return apierr.ErrNotFound("book not found")
	}
	if status != books.StatusAvailable {
		return apierr.ErrConflict("book unavailable")
	}
	f.bookStatus[m.BookID] = books.StatusLoaned
	m.LoanID = f.nextLoanID
	f.nextLoanID++
	cp := *m
	f.loans[cp.LoanID] = &cp
	return nil
}

func (f *fakeStore) ExecCompleteReturn(_ context.Context, loanID int64, returnDate time.Time, fine *FineSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.loans[loanID]
	if !ok {
		return apierr.ErrNotFound("loan not found")
	}
	if l.ReturnDate.Valid {
		return apierr.ErrConflict("loan already closed")
	}
	if returnDate.Before(l.StartDate) {
		return apierr.ErrInvalid("return_date precedes start_date")
	}
	l.ReturnDate.Time = returnDate
	l.ReturnDate.Valid = true
	if status, ok := f.bookStatus[l.BookID]; ok && status == books.StatusLoaned {
		f.bookStatus[l.BookID] = books.StatusAvailable
	}
	if fine != nil {
		f.fines = append(f.fines, *fine)
		f.fineLoans = append(f.fineLoans, loanID)
	}
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, loanID int64) (*Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.loans[loanID]
	if !ok {
		return nil, apierr.ErrNotFound("loan not found")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeStore) ListActive(_ context.Context) ([]ActiveLoanResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ActiveLoanResponse, 0)
	for id := int64(1); id < f.nextLoanID; id++ {
		l := f.loans[id]
		if l != nil && !l.ReturnDate.Valid {
			out = append(out, ActiveLoanResponse{LoanID: id, StartDate: l.StartDate.Format(dateLayout)})
		}
	}
	return out, nil
}

func (f *fakeStore) openLoanCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.loans {
		if !l.ReturnDate.Valid {
			n++
		}
	}
	return n
}

func assertCode(t *testing.T, err error, code apierr.Code) {
	t.Helper()
	var api *apierr.APIError
	require.True(t, errors.As(err, &api), "expected *apierr.APIError, got %v", err)
	assert.Equal(t, code, api.Code)
}

func Test_CreateLoan_MarksTheBookLoaned(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}

	res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LoanID)
	assert.Equal(t, "2024-01-01", res.StartDate)
	assert.Nil(t, res.ReturnDate)
	assert.Equal(t, books.StatusLoaned, store.bookStatus[1])
}

func Test_CreateLoan_RejectsBadInput(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}

	cases := []struct {
		name string
		req  CreateLoanRequest
	}{
		{"zero member", CreateLoanRequest{MemberID: 0, BookID: 1, StartDate: "2024-01-01"}},
		{"zero book", CreateLoanRequest{MemberID: 1, BookID: 0, StartDate: "2024-01-01"}},
		{"bad date", CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "01/01/2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateLoan(context.Background(), tc.req)
			assertCode(t, err, apierr.CodeInvalidArgument)
		})
	}
	// no loan row may exist after any rejection
	assert.Equal(t, 0, store.openLoanCount())
	assert.Equal(t, books.StatusAvailable, store.bookStatus[1])
}

func Test_CreateLoan_OnLoanedBook_FailsWithoutCreatingALoan(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}

	_, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
	require.NoError(t, err)

	_, err = svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 2, BookID: 1, StartDate: "2024-01-02"})

	assertCode(t, err, apierr.CodeConflict)
	assert.Equal(t, 1, store.openLoanCount())
}

func Test_CreateLoan_UnknownBook_IsNotFound(t *testing.T) {
	svc := &Service{store: newFakeStore()}

	_, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 99, StartDate: "2024-01-01"})

	assertCode(t, err, apierr.CodeNotFound)
}

func Test_CreateLoan_Concurrent_ExactlyOneWins(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateLoan(context.Background(), CreateLoanRequest{
				MemberID:  int64(i + 1),
				BookID:    1,
				StartDate: "2024-01-01",
			})
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var api *apierr.APIError
		require.True(t, errors.As(err, &api))
		require.Equal(t, apierr.CodeConflict, api.Code)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, store.openLoanCount())
}

func Test_CompleteReturn_ClosesLoanAndFreesBook(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}
	res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
	require.NoError(t, err)

	err = svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{ReturnDate: "2024-01-10"})

	require.NoError(t, err)
	assert.Equal(t, books.StatusAvailable, store.bookStatus[1])
	got, err := svc.GetLoan(context.Background(), res.LoanID)
	require.NoError(t, err)
	require.NotNil(t, got.ReturnDate)
	assert.Equal(t, "2024-01-10", *got.ReturnDate)
	assert.Empty(t, store.fines)
}

func Test_CompleteReturn_Twice_IsRejected_AndNeverDoublesTheFine(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}
	res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
	require.NoError(t, err)

	damaged := CompleteReturnRequest{
		ReturnDate: "2024-01-10",
		Damaged:    true,
		FineAmount: decimal.RequireFromString("5.00"),
	}
	require.NoError(t, svc.CompleteReturn(context.Background(), res.LoanID, damaged))

	err = svc.CompleteReturn(context.Background(), res.LoanID, damaged)

	assertCode(t, err, apierr.CodeConflict)
	require.Len(t, store.fines, 1)
	assert.True(t, store.fines[0].Amount.Equal(decimal.RequireFromString("5.00")))
}

func Test_CompleteReturn_FineOnlyWhenDamagedAndPositive(t *testing.T) {
	cases := []struct {
		name     string
		damaged  bool
		amount   string
		wantFine bool
	}{
		{"damaged with amount", true, "5.00", true},
		{"damaged without amount", true, "0", false},
		{"undamaged with amount", false, "5.00", false},
		{"undamaged without amount", false, "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			store.bookStatus[1] = books.StatusAvailable
			svc := &Service{store: store}
			res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
			require.NoError(t, err)

			err = svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{
				ReturnDate: "2024-01-10",
				Damaged:    tc.damaged,
				FineAmount: decimal.RequireFromString(tc.amount),
			})

			require.NoError(t, err)
			if tc.wantFine {
				require.Len(t, store.fines, 1)
				assert.True(t, store.fines[0].Amount.Equal(decimal.RequireFromString(tc.amount)),
					"stored amount must equal the input exactly")
			} else {
				assert.Empty(t, store.fines)
			}
		})
	}
}

func Test_CompleteReturn_ReasonIsTrimmedAndPassedThrough(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}
	res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
	require.NoError(t, err)

	reason := "  torn page  "
	err = svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{
		ReturnDate: "2024-01-10",
		Damaged:    true,
		FineAmount: decimal.RequireFromString("5.00"),
		Reason:     &reason,
	})

	require.NoError(t, err)
	require.Len(t, store.fines, 1)
	assert.Equal(t, "torn page", store.fines[0].Reason)
	assert.Equal(t, res.LoanID, store.fineLoans[0])
}

func Test_CompleteReturn_RejectsBadInput(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	svc := &Service{store: store}
	res, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-05"})
	require.NoError(t, err)

	t.Run("bad date", func(t *testing.T) {
		err := svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{ReturnDate: "soon"})
		assertCode(t, err, apierr.CodeInvalidArgument)
	})
	t.Run("negative fine amount", func(t *testing.T) {
		err := svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{
			ReturnDate: "2024-01-10",
			Damaged:    true,
			FineAmount: decimal.RequireFromString("-1"),
		})
		assertCode(t, err, apierr.CodeInvalidArgument)
	})
	t.Run("return before start", func(t *testing.T) {
		err := svc.CompleteReturn(context.Background(), res.LoanID, CompleteReturnRequest{ReturnDate: "2024-01-01"})
		assertCode(t, err, apierr.CodeInvalidArgument)
	})
	t.Run("unknown loan", func(t *testing.T) {
		err := svc.CompleteReturn(context.Background(), 99, CompleteReturnRequest{ReturnDate: "2024-01-10"})
		assertCode(t, err, apierr.CodeNotFound)
	})

	// nothing above may have closed the loan
	assert.Equal(t, 1, store.openLoanCount())
	assert.Empty(t, store.fines)
}

func Test_ListActiveLoans_ReturnsOnlyOpenLoans(t *testing.T) {
	store := newFakeStore()
	store.bookStatus[1] = books.StatusAvailable
	store.bookStatus[2] = books.StatusAvailable
	svc := &Service{store: store}

	first, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 1, BookID: 1, StartDate: "2024-01-01"})
	require.NoError(t, err)
	second, err := svc.CreateLoan(context.Background(), CreateLoanRequest{MemberID: 2, BookID: 2, StartDate: "2024-01-02"})
	require.NoError(t, err)
	require.NoError(t, svc.CompleteReturn(context.Background(), first.LoanID, CompleteReturnRequest{ReturnDate: "2024-01-03"}))

	active, err := svc.ListActiveLoans(context.Background())

	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.LoanID, active[0].LoanID)
}
