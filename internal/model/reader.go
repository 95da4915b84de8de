package model

import "time"

// Card statuses.  Transitions are date-driven: extension compares the
// new expiry against now and the cancellation grace window.
const (
	CardStatusActive     = "Active"
	CardStatusNotRenewed = "Not Renewed"
	CardStatusCancelled  = "Cancelled"
)

// CardTypeLoan is the card type whose deposit balance is seeded from
// the selected deposit package on issue.
const CardTypeLoan = "Loan Card"

// Reader is a patron profile.  AccountID links the reader one-to-one
// with an account in the external identity service.
type Reader struct {
	ID        uint64    // readers.id
	AccountID string    // readers.account_id (identity-service subject)
	FullName  string    // readers.full_name
	Email     string    // readers.email
	Phone     *string   // readers.phone (nullable)
	CreatedAt time.Time // readers.created_at
}

// LibraryCard is issued one per reader.  The deposit balance is a
// prepaid credit pool: copy prices are credited back into it when
// copies are returned.
//
// Fields:
//  ID                    – primary key identifier.
//  ReaderID              – owning reader.
//  CardNumber            – printed card number.
//  CardType              – e.g. "Loan Card".
//  DepositPackageID      – selected deposit package (nullable).
//  CurrentDepositBalance – running deposit balance.
//  IssueDate             – date of issue.
//  ExpiryDate            – current expiry date.
//  Status                – Active, Not Renewed or Cancelled.
type LibraryCard struct {
	ID                    uint64    // library_cards.id
	ReaderID              uint64    // library_cards.reader_id
	CardNumber            string    // library_cards.card_number
	CardType              string    // library_cards.card_type
	DepositPackageID      *uint64   // library_cards.deposit_package_id (nullable)
	CurrentDepositBalance int64     // library_cards.current_deposit_balance
	IssueDate             time.Time // library_cards.issue_date (DATE)
	ExpiryDate            time.Time // library_cards.expiry_date (DATE)
	Status                string    // library_cards.card_status
}

// DepositPackage is a preset deposit amount a reader can choose when a
// loan card is issued.
type DepositPackage struct {
	ID     uint64 // deposit_packages.id
	Name   string // deposit_packages.package_name
	Amount int64  // deposit_packages.amount
}
