package catalog

// Raw API response types. Only the fields we consume are declared; the
// catalog returns more that we ignore.

type rawAvailability struct {
	Title    string      `json:"title"`
	Brief    string      `json:"brief"`
	Branches []rawBranch `json:"branches"`
}

type rawBranch struct {
	BranchName string `json:"branch_name"`
	Available  bool   `json:"available"`
}
