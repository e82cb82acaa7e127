package domain

type Province struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Municipality struct {
	ID         int32  `json:"id"`
	ProvinceID int32  `json:"province_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

type Barangay struct {
	ID             int32  `json:"id"`
	MunicipalityID int32  `json:"municipality_id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
}
