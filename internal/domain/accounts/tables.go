package accounts

// Table and column names shared by the gorm models, the row gateway,
// and the join queries issued while hydrating an account.
const (
	TableAccountData         = "account_data"
	TablePayer               = "payer"
	TablePremises            = "premises"
	TablePremisesLivingRoom  = "premises_living_room"
	TableAccountToPayer      = "account_to_payer"
	TableAccountToPremises   = "account_to_premises"
	TableAccountToLivingRoom = "account_to_living_room"
)

const (
	ColAccountDataID       = "account_data_id"
	ColNumber              = "number"
	ColGUID                = "guid"
	ColHouseID             = "house_id"
	ColCreationDate        = "creation_date"
	ColTotalSquare         = "total_square"
	ColLivingSquare        = "living_square"
	ColHeatedSquare        = "heated_square"
	ColLivingPersonsNumber = "living_persons_number"
	ColAccountType         = "account_type"

	ColPayerID    = "payer_id"
	ColSurname    = "surname"
	ColFirstName  = "first_name"
	ColPatronymic = "patronymic"
	ColSNILS      = "snils"
	ColPayerInfo  = "info"

	ColPremisesID     = "premises_id"
	ColPremisesNum    = "premises_num"
	ColPremisesTypeID = "premises_type_id"

	ColPremisesLivingRoomID = "premises_living_room_id"
	ColRoomNum              = "room_num"

	ColSharePercent = "share_percent"
)

// PrimaryKey returns the surrogate key column of table.
// Every table in this schema names it <table>_id.
func PrimaryKey(table string) string {
	return table + "_id"
}
