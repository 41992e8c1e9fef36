package query

import "FundChain/internal/pkg"

// Paginate conta o total e carrega somente a janela pedida, convertendo cada
// linha para o tipo de domínio.
func Paginate[DBModel any, Domain any](
	q *Query[DBModel],
	pagination *pkg.PaginationParams,
	converter func(*DBModel) (*Domain, error),
) ([]*Domain, int64, error) {
	pagination = pkg.NormalizePagination(pagination)

	total, err := q.Count()
	if err != nil {
		return nil, 0, err
	}

	db := q.DB()
	if q.OrderBy() != "" {
		db = db.Order(q.OrderBy())
	}

	var rows []DBModel
	err = db.Offset(pagination.Offset()).Limit(pagination.Limit).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items, err := convert(rows, converter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func All[DBModel any, Domain any](
	q *Query[DBModel],
	converter func(*DBModel) (*Domain, error),
) ([]*Domain, error) {
	rows, err := q.Find()
	if err != nil {
		return nil, err
	}
	return convert(rows, converter)
}

func convert[DBModel any, Domain any](rows []DBModel, converter func(*DBModel) (*Domain, error)) ([]*Domain, error) {
	items := make([]*Domain, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
