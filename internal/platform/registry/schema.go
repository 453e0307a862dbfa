package registry

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the registry's account-type discriminant.
type AccountKind string

const (
	AccountKindUO       AccountKind = "isUOAccount"
	AccountKindRSO      AccountKind = "isRSOAccount"
	AccountKindRC       AccountKind = "isRCAccount"
	AccountKindOGVorOMS AccountKind = "isOGVorOMSAccount"
	AccountKindCR       AccountKind = "isCRAccount"
)

// AccommodationKind tells which catalogue an Accommodation GUID points into.
type AccommodationKind string

const (
	AccommodationPremises   AccommodationKind = "PremisesGUID"
	AccommodationLivingRoom AccommodationKind = "LivingRoomGUID"
)

func (k AccommodationKind) Valid() bool {
	return k == AccommodationPremises || k == AccommodationLivingRoom
}

// Accommodation links an account to a premise or a living room.
// Inbound exports only carry Kind and GUID.
type Accommodation struct {
	Kind                  AccommodationKind `json:"kind"`
	GUID                  string            `json:"guid"`
	SharePercent          decimal.Decimal   `json:"sharePercent"`
	SharePercentSpecified bool              `json:"sharePercentSpecified"`
}

type IdentityDocument struct {
	Type   string `json:"type"`
	Series string `json:"series,omitempty"`
	Number string `json:"number"`
}

type IndividualPayer struct {
	Surname    string            `json:"surname"`
	FirstName  string            `json:"firstName"`
	Patronymic string            `json:"patronymic,omitempty"`
	SNILS      string            `json:"snils,omitempty"`
	Document   *IdentityDocument `json:"document,omitempty"`
}

// OrganizationPayer is decoded so payloads round-trip, but accounts never act on it.
type OrganizationPayer struct {
	OrgVersionGUID string `json:"orgVersionGuid"`
}

type PayerInfo struct {
	IsRenter          bool               `json:"isRenter"`
	IsRenterSpecified bool               `json:"isRenterSpecified"`
	Individual        *IndividualPayer   `json:"individual,omitempty"`
	Organization      *OrganizationPayer `json:"organization,omitempty"`
}

// AccountExportResult is one account as returned by the registry export.
type AccountExportResult struct {
	AccountNumber                string          `json:"accountNumber"`
	AccountGUID                  string          `json:"accountGuid"`
	CreationDate                 time.Time       `json:"creationDate"`
	CreationDateSpecified        bool            `json:"creationDateSpecified"`
	TotalSquare                  decimal.Decimal `json:"totalSquare"`
	TotalSquareSpecified         bool            `json:"totalSquareSpecified"`
	ResidentialSquare            decimal.Decimal `json:"residentialSquare"`
	ResidentialSquareSpecified   bool            `json:"residentialSquareSpecified"`
	HeatedArea                   decimal.Decimal `json:"heatedArea"`
	HeatedAreaSpecified          bool            `json:"heatedAreaSpecified"`
	LivingPersonsNumber          int8            `json:"livingPersonsNumber"`
	LivingPersonsNumberSpecified bool            `json:"livingPersonsNumberSpecified"`
	AccountType                  AccountKind     `json:"accountType"`
	Accommodation                []Accommodation `json:"accommodation"`
	PayerInfo                    *PayerInfo      `json:"payerInfo,omitempty"`
}

// ImportAccountRequestAccount is one outbound create/update request.
// AccountGUID is only sent for updates.
type ImportAccountRequestAccount struct {
	AccountNumber                string          `json:"accountNumber"`
	TransportGUID                string          `json:"transportGuid"`
	AccountGUID                  string          `json:"accountGuid,omitempty"`
	CreationDate                 time.Time       `json:"creationDate"`
	CreationDateSpecified        bool            `json:"creationDateSpecified"`
	AccountType                  AccountKind     `json:"accountType"`
	PayerInfo                    *PayerInfo      `json:"payerInfo"`
	TotalSquare                  decimal.Decimal `json:"totalSquare"`
	TotalSquareSpecified         bool            `json:"totalSquareSpecified"`
	ResidentialSquare            decimal.Decimal `json:"residentialSquare"`
	ResidentialSquareSpecified   bool            `json:"residentialSquareSpecified"`
	HeatedArea                   decimal.Decimal `json:"heatedArea"`
	HeatedAreaSpecified          bool            `json:"heatedAreaSpecified"`
	LivingPersonsNumber          int8            `json:"livingPersonsNumber"`
	LivingPersonsNumberSpecified bool            `json:"livingPersonsNumberSpecified"`
	Accommodation                []Accommodation `json:"accommodation"`
}

type LivingRoomExport struct {
	RoomNumber     string `json:"roomNumber"`
	LivingRoomGUID string `json:"livingRoomGuid"`
}

type ResidentialPremiseExport struct {
	PremisesNum  string             `json:"premisesNum"`
	PremisesGUID string             `json:"premisesGuid"`
	LivingRooms  []LivingRoomExport `json:"livingRooms"`
}

type NonResidentialPremiseExport struct {
	PremisesNum  string `json:"premisesNum"`
	PremisesGUID string `json:"premisesGuid"`
}

// HouseExportResult is the registry's catalogue of one building.
type HouseExportResult struct {
	FIASHouseGUID          string                        `json:"fiasHouseGuid"`
	ResidentialPremises    []ResidentialPremiseExport    `json:"residentialPremises"`
	NonResidentialPremises []NonResidentialPremiseExport `json:"nonResidentialPremises"`
}

type ImportError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ImportResult reports the registry's verdict for one TransportGUID.
type ImportResult struct {
	TransportGUID string       `json:"transportGuid"`
	GUID          string       `json:"guid,omitempty"`
	UniqueNumber  string       `json:"uniqueNumber,omitempty"`
	Error         *ImportError `json:"error,omitempty"`
}
