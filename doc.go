// Package bptdb is an in-memory table store indexed by B+ trees.
//
// A DB is a catalog of databases, each holding tables. Every table has a
// Schema of typed columns, one of which is the key, and stores Records in a
// bptree.Tree ordered by that key:
//
//	db := bptdb.New()
//	_ = db.CreateDatabase("shop")
//	schema, _ := bptdb.ParseSchema("id:int,name:string,price:float", "id")
//	items, _ := db.CreateTable("shop", "items", schema)
//	_ = items.Insert(bptdb.Record{
//	    "id":    bptdb.Int(1),
//	    "name":  bptdb.String("lamp"),
//	    "price": bptdb.Float(19.5),
//	})
//	rows, _ := items.RangeQuery(bptdb.Int(1), bptdb.Int(10))
//
// The catalog persists as a single checksummed snapshot file through Save
// and Load, or Open for a file-backed catalog.
package bptdb
