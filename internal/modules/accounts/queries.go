package accounts

// Association joins scoped to one account. Each orders by the edge key so
// loaders preserve insertion order.
const (
	payersByAccountQuery = `SELECT DISTINCT payer.* FROM account_data ` +
		`INNER JOIN account_to_payer ON account_to_payer.account_data_id = account_data.account_data_id ` +
		`INNER JOIN payer ON account_to_payer.payer_id = payer.payer_id ` +
		`WHERE account_data.account_data_id = @account_id ` +
		`ORDER BY payer.payer_id`

	premisesByAccountQuery = `SELECT premises.*, account_to_premises.share_percent FROM account_data ` +
		`INNER JOIN account_to_premises ON account_to_premises.account_data_id = account_data.account_data_id ` +
		`INNER JOIN premises ON account_to_premises.premises_id = premises.premises_id ` +
		`WHERE account_data.account_data_id = @account_id ` +
		`ORDER BY account_to_premises.account_to_premises_id`

	roomsByAccountQuery = `SELECT premises_living_room.*, premises.premises_num FROM account_data ` +
		`INNER JOIN account_to_living_room ON account_to_living_room.account_data_id = account_data.account_data_id ` +
		`INNER JOIN premises_living_room ON account_to_living_room.premises_living_room_id = premises_living_room.premises_living_room_id ` +
		`INNER JOIN premises ON premises_living_room.premises_id = premises.premises_id ` +
		`WHERE account_data.account_data_id = @account_id ` +
		`ORDER BY account_to_living_room.account_to_living_room_id`
)
