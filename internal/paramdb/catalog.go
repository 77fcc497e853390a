package paramdb

// Catalog bundles the module and inverter databases a deployment serves.
// Either database may be nil when the corresponding CSV is not
// configured.
type Catalog struct {
	Modules   *Database
	Inverters *Database
}

// LoadCatalog loads the configured databases. An empty path leaves the
// corresponding database nil rather than failing, so deployments can run
// with only one of the two.
func LoadCatalog(moduleCSV, inverterCSV string) (*Catalog, error) {
	c := &Catalog{}

	if moduleCSV != "" {
		db, err := Load(moduleCSV)
		if err != nil {
			return nil, err
		}
		c.Modules = db
	}
	if inverterCSV != "" {
		db, err := Load(inverterCSV)
		if err != nil {
			return nil, err
		}
		c.Inverters = db
	}
	return c, nil
}
