package csvdb

const (
	cTblIniExt = "tbl.ini"
	cUTF8BOM   = "\ufeff"
)
