package pdarrow

import (
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// PostgreSQL type OIDs with a dedicated column type.
const (
	TypeOIDBool        = 16
	TypeOIDBytea       = 17
	TypeOIDChar        = 18
	TypeOIDName        = 19
	TypeOIDInt8        = 20
	TypeOIDInt2        = 21
	TypeOIDInt4        = 23
	TypeOIDText        = 25
	TypeOIDFloat4      = 700
	TypeOIDFloat8      = 701
	TypeOIDBpchar      = 1042
	TypeOIDVarchar     = 1043
	TypeOIDDate        = 1082
	TypeOIDTime        = 1083
	TypeOIDTimestamp   = 1114
	TypeOIDTimestamptz = 1184
	TypeOIDInterval    = 1186
	TypeOIDNumeric     = 1700
)

// DTypeForOID returns the column type for a PostgreSQL type OID, or nil when
// the type is inferred from the values.
func DTypeForOID(oid uint32) DType {
	switch oid {
	case TypeOIDBool:
		return ExtensionTypes.Boolean
	case TypeOIDInt2:
		return ExtensionTypes.Int16
	case TypeOIDInt4:
		return ExtensionTypes.Int32
	case TypeOIDInt8:
		return ExtensionTypes.Int64
	case TypeOIDFloat4:
		return ExtensionTypes.Float32
	case TypeOIDFloat8, TypeOIDNumeric:
		return ExtensionTypes.Float64
	case TypeOIDText, TypeOIDVarchar, TypeOIDBpchar, TypeOIDName, TypeOIDChar:
		return ExtensionTypes.String
	case TypeOIDDate, TypeOIDTimestamp:
		return PrimitiveTypes.Datetime
	case TypeOIDTimestamptz:
		return NewDatetimeTZDType(utcZone)
	case TypeOIDBytea:
		return PrimitiveTypes.Object
	}
	return nil
}

// pgValue converts a value decoded by pgx for a column of type oid to the
// element form the engine classifies. Nullable pgtype wrappers become their
// value or nil, numerics become decimals, and intervals without a month
// component become durations.
func pgValue(oid uint32, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if oid == TypeOIDTimestamptz {
			return x.In(utcZone), nil
		}
		return Naive(x), nil
	case pgtype.InfinityModifier:
		return nil, fmt.Errorf("%w: infinite %s", ErrOutOfBoundsDatetime, x)
	case pgtype.Numeric:
		return numericValue(x)
	case pgtype.Interval:
		return intervalValue(x), nil
	case pgtype.Bool:
		if !x.Valid {
			return nil, nil
		}
		return x.Bool, nil
	case pgtype.Int2:
		if !x.Valid {
			return nil, nil
		}
		return x.Int16, nil
	case pgtype.Int4:
		if !x.Valid {
			return nil, nil
		}
		return x.Int32, nil
	case pgtype.Int8:
		if !x.Valid {
			return nil, nil
		}
		return x.Int64, nil
	case pgtype.Float4:
		if !x.Valid {
			return nil, nil
		}
		return x.Float32, nil
	case pgtype.Float8:
		if !x.Valid {
			return nil, nil
		}
		return x.Float64, nil
	case pgtype.Text:
		if !x.Valid {
			return nil, nil
		}
		return x.String, nil
	case pgtype.Date:
		return pgTime(oid, x.Time, x.InfinityModifier, x.Valid)
	case pgtype.Timestamp:
		return pgTime(oid, x.Time, x.InfinityModifier, x.Valid)
	case pgtype.Timestamptz:
		return pgTime(TypeOIDTimestamptz, x.Time, x.InfinityModifier, x.Valid)
	}
	return v, nil
}

func pgTime(oid uint32, t time.Time, inf pgtype.InfinityModifier, valid bool) (any, error) {
	if !valid {
		return nil, nil
	}
	if inf != pgtype.Finite {
		return pgValue(oid, inf)
	}
	return pgValue(oid, t)
}

func numericValue(n pgtype.Numeric) (any, error) {
	switch {
	case !n.Valid:
		return nil, nil
	case n.NaN:
		return math.NaN(), nil
	case n.InfinityModifier == pgtype.Infinity:
		return math.Inf(1), nil
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return math.Inf(-1), nil
	case n.Int == nil:
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

// intervalValue returns an interval without months as a duration. Months
// have no fixed length, so such intervals are kept as they are.
func intervalValue(iv pgtype.Interval) any {
	if !iv.Valid {
		return nil
	}
	if iv.Months != 0 {
		return iv
	}
	return time.Duration(iv.Days)*24*time.Hour + time.Duration(iv.Microseconds)*time.Microsecond
}
