// =============================================================================
// GST Returns Reporter - GSTR-3B Extractors
// =============================================================================
//
// A GSTR-3B return is a monthly summary, so each file yields at most a few
// rows per table, all tagged with the return period.
//
// DOCUMENT SHAPE:
//   { "data": { "r3b": {
//         "ret_period":  "<MMYYYY>",
//         "sup_details": { "osup_det": {...}, ... },          3.1
//         "inter_sup":   { "unreg_details": [...], ... },     3.2
//         "itc_elg":     { "itc_avl": [...], ... },           4
//         "intr_ltfee":  { "intr_details": ..., ... },        5.1
//         "tt_val":      { "tt_itc_pd": .., "tt_csh_pd": .. } 6
//     } },
//     "taxpayable": { "data": { "returnsDbCdredList": {...} } } }  6.1
//
// Every table gets a zero row when the return has nothing for it. Such rows
// keep the period visible in the data but never make a sheet appear on their
// own, because sheets are only written when they hold a non-zero amount.
//
// =============================================================================

package gstr3b

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nihasbabu/gst-modules/internal/jsonx"
	"github.com/nihasbabu/gst-modules/internal/normalize"
	"github.com/nihasbabu/gst-modules/internal/period"
	"github.com/nihasbabu/gst-modules/internal/source"
	"github.com/nihasbabu/gst-modules/internal/types"
)

// =============================================================================
// RETURN
// =============================================================================

// Return is one parsed GSTR-3B file.
type Return struct {
	// Name is the base name of the source file.
	Name string

	// TaxPeriod is the month of data.r3b.ret_period.
	TaxPeriod string

	r3b     r3bData
	payable paymentData
	// hasPayable is false when returnsDbCdredList is missing or empty.
	hasPayable bool
}

type r3bData struct {
	RetPeriod  jsonx.Text `json:"ret_period"`
	SupDetails struct {
		OsupDet     amounts `json:"osup_det"`
		OsupZero    amounts `json:"osup_zero"`
		OsupNilExmp amounts `json:"osup_nil_exmp"`
		IsupRev     amounts `json:"isup_rev"`
		OsupNongst  amounts `json:"osup_nongst"`
	} `json:"sup_details"`
	InterSup struct {
		UnregDetails jsonx.List[amounts] `json:"unreg_details"`
		CompDetails  jsonx.List[amounts] `json:"comp_details"`
		UINDetails   jsonx.List[amounts] `json:"uin_details"`
	} `json:"inter_sup"`
	ITCElg struct {
		ITCAvl   jsonx.List[itcEntry] `json:"itc_avl"`
		ITCRev   jsonx.List[itcEntry] `json:"itc_rev"`
		ITCNet   amounts              `json:"itc_net"`
		ITCInelg jsonx.List[itcEntry] `json:"itc_inelg"`
	} `json:"itc_elg"`
	IntrLtfee struct {
		IntrDetails  jsonx.List[amounts] `json:"intr_details"`
		LtfeeDetails jsonx.List[amounts] `json:"ltfee_details"`
	} `json:"intr_ltfee"`
	TtVal struct {
		TtItcPd jsonx.Amount `json:"tt_itc_pd"`
		TtCshPd jsonx.Amount `json:"tt_csh_pd"`
	} `json:"tt_val"`
}

// amounts is the common txval/iamt/camt/samt/csamt block.
type amounts struct {
	Txval jsonx.Amount `json:"txval"`
	Iamt  jsonx.Amount `json:"iamt"`
	Camt  jsonx.Amount `json:"camt"`
	Samt  jsonx.Amount `json:"samt"`
	Csamt jsonx.Amount `json:"csamt"`
}

type itcEntry struct {
	amounts
	Ty jsonx.Text `json:"ty"`
}

// paymentData is taxpayable.data.returnsDbCdredList.
type paymentData struct {
	TaxPay    jsonx.List[payment] `json:"tax_pay"`
	NetTaxPay jsonx.List[payment] `json:"net_tax_pay"`
	TaxPaid   struct {
		PdByNLS  jsonx.List[payment]    `json:"pd_by_nls"`
		PdByCash jsonx.List[payment]    `json:"pd_by_cash"`
		PdByITC  jsonx.List[itcPayment] `json:"pd_by_itc"`
	} `json:"tax_paid"`
}

// headAmounts holds the tax, interest and fee of one tax head.
type headAmounts struct {
	Tx   jsonx.Amount `json:"tx"`
	Intr jsonx.Amount `json:"intr"`
	Fee  jsonx.Amount `json:"fee"`
}

type payment struct {
	Trancd jsonx.Amount `json:"trancd"`
	Igst   headAmounts  `json:"igst"`
	Cgst   headAmounts  `json:"cgst"`
	Sgst   headAmounts  `json:"sgst"`
	Cess   headAmounts  `json:"cess"`
}

// itcPayment maps "<credit>_<liability>_amt" keys to the credit used, plus
// trancd and bookkeeping ids.
type itcPayment map[string]jsonx.Amount

// Parse reads a loaded GSTR-3B document.
func Parse(doc *source.Document) *Return {
	r := &Return{Name: doc.Name()}

	var data struct {
		R3B r3bData `json:"r3b"`
	}
	jsonx.Decode(doc.Fields["data"], &data)
	r.r3b = data.R3B
	r.TaxPeriod = period.ResolveLenient(r.r3b.RetPeriod.String())

	var taxpayable struct {
		Data struct {
			List json.RawMessage `json:"returnsDbCdredList"`
		} `json:"data"`
	}
	jsonx.Decode(doc.Fields["taxpayable"], &taxpayable)
	var keys map[string]json.RawMessage
	if jsonx.Decode(taxpayable.Data.List, &keys) && len(keys) > 0 {
		r.hasPayable = jsonx.Decode(taxpayable.Data.List, &r.payable)
	}
	return r
}

// =============================================================================
// ROWS
// =============================================================================

func (r *Return) newRow() types.Row {
	row := types.NewRow()
	row.Set(colPeriod, types.Text(r.TaxPeriod))
	return row
}

func (r *Return) zeroRow(t table) types.Row {
	row := r.newRow()
	for _, c := range t.amounts {
		row.Set(c, types.Number(decimal.Zero))
	}
	return row
}

func (r *Return) supplyRow(a amounts, cols []string) types.Row {
	row := r.newRow()
	values := map[string]jsonx.Amount{
		colTaxable:    a.Txval,
		colIntegrated: a.Iamt,
		colCentral:    a.Camt,
		colState:      a.Samt,
		colCess:       a.Csamt,
	}
	for _, c := range cols {
		row.Set(c, values[c].Value(normalize.Rounded))
	}
	return row
}

func (r *Return) taxRow(igst, cgst, sgst, cess decimal.Decimal) types.Row {
	row := r.newRow()
	row.Set(colIntegrated, types.Number(igst))
	row.Set(colCentral, types.Number(cgst))
	row.Set(colState, types.Number(sgst))
	row.Set(colCess, types.Number(cess))
	return row
}

// Tables extracts every table of the return, keyed by table key. Each table
// has at least one row.
func (r *Return) Tables() map[string][]types.Row {
	out := make(map[string][]types.Row, len(tables))
	r.outward(out)
	r.interState(out)
	r.itc(out)
	r.interest(out)
	r.payments(out)
	for _, t := range tables {
		if len(out[t.key]) == 0 {
			out[t.key] = []types.Row{r.zeroRow(t)}
		}
	}
	return out
}

// outward fills table 3.1.
func (r *Return) outward(out map[string][]types.Row) {
	sd := r.r3b.SupDetails
	for key, a := range map[string]amounts{
		OutwardTaxable: sd.OsupDet,
		OutwardZero:    sd.OsupZero,
		OutwardNil:     sd.OsupNilExmp,
		InwardReverse:  sd.IsupRev,
		OutwardNonGST:  sd.OsupNongst,
	} {
		out[key] = append(out[key], r.supplyRow(a, supplyCols))
	}
}

// interState fills table 3.2.
func (r *Return) interState(out map[string][]types.Row) {
	is := r.r3b.InterSup
	for key, list := range map[string][]amounts{
		InterUnreg: is.UnregDetails,
		InterComp:  is.CompDetails,
		InterUIN:   is.UINDetails,
	} {
		for _, a := range list {
			out[key] = append(out[key], r.supplyRow(a, interCols))
		}
	}
}

// itc fills table 4. Available, reversed and ineligible entries are routed by
// their "ty" and also totalled into their parent table, including entries of
// an unknown type.
func (r *Return) itc(out map[string][]types.Row) {
	elg := r.r3b.ITCElg
	r.itcGroup(out, ITCAvailable, "ITC-avl-", elg.ITCAvl)
	r.itcGroup(out, ITCReversed, "ITC-rev-", elg.ITCRev)
	r.itcGroup(out, ITCIneligible, "ITC-inelg-", elg.ITCInelg)
	out[NetITC] = append(out[NetITC], r.supplyRow(elg.ITCNet, taxCols))
}

func (r *Return) itcGroup(out map[string][]types.Row, total, prefix string, entries []itcEntry) {
	if len(entries) == 0 {
		return
	}
	var sum [4]decimal.Decimal
	for _, e := range entries {
		row := r.supplyRow(e.amounts, taxCols)
		if key := prefix + e.Ty.Trim(); isTable(key) {
			out[key] = append(out[key], row)
		}
		for i, c := range taxCols {
			sum[i] = sum[i].Add(row.Get(c).Decimal())
		}
	}
	out[total] = append(out[total], r.taxRow(sum[0], sum[1], sum[2], sum[3]))
}

// interest fills table 5.1.
func (r *Return) interest(out map[string][]types.Row) {
	for _, a := range r.r3b.IntrLtfee.IntrDetails {
		out[InterestPaid] = append(out[InterestPaid], r.supplyRow(a, taxCols))
	}
	for _, a := range r.r3b.IntrLtfee.LtfeeDetails {
		out[LateFee] = append(out[LateFee], r.supplyRow(a, taxCols))
	}
}

// payments fills tables 6 and 6.1.
func (r *Return) payments(out map[string][]types.Row) {
	row := r.newRow()
	row.Set(colByITC, r.r3b.TtVal.TtItcPd.Value(normalize.Rounded))
	row.Set(colByCash, r.r3b.TtVal.TtCshPd.Value(normalize.Rounded))
	out[TaxPay] = append(out[TaxPay], row)

	if !r.hasPayable {
		return
	}
	add := func(p payment, code string, field func(headAmounts) jsonx.Amount) {
		reverse, ok := transaction(p.Trancd)
		if !ok {
			return
		}
		key := paymentKey(reverse, code)
		out[key] = append(out[key], r.taxRow(
			field(p.Igst).Dec(normalize.Rounded),
			field(p.Cgst).Dec(normalize.Rounded),
			field(p.Sgst).Dec(normalize.Rounded),
			field(p.Cess).Dec(normalize.Rounded)))
	}
	tx := func(h headAmounts) jsonx.Amount { return h.Tx }
	intr := func(h headAmounts) jsonx.Amount { return h.Intr }
	fee := func(h headAmounts) jsonx.Amount { return h.Fee }

	for _, p := range r.payable.TaxPay {
		add(p, "1", tx)
		add(p, "6", intr)
		add(p, "7", fee)
	}
	for _, p := range r.payable.TaxPaid.PdByNLS {
		add(p, "2", tx)
	}
	for _, p := range r.payable.NetTaxPay {
		add(p, "3", tx)
	}
	for _, p := range r.payable.TaxPaid.PdByCash {
		add(p, "5", tx)
	}
	for _, p := range r.payable.TaxPaid.PdByITC {
		r.itcPayment(out, p)
	}
}

// heads maps a tax head to its row (by liability) or column (by credit).
var heads = map[string]int{"igst": 0, "cgst": 1, "sgst": 2, "cess": 3}

// itcPayment splits one pd_by_itc entry into the four 6.1 ITC tables: the
// liability head picks the table and the credit head picks the column.
func (r *Return) itcPayment(out map[string][]types.Row, p itcPayment) {
	reverse, ok := transaction(p["trancd"])
	if !ok {
		return
	}
	var grid [4][4]decimal.Decimal
	for key, amt := range p {
		parts := strings.Split(key, "_")
		if len(parts) != 3 || parts[2] != "amt" {
			continue
		}
		credit, ok1 := heads[strings.ToLower(parts[0])]
		liability, ok2 := heads[strings.ToLower(parts[1])]
		if !ok1 || !ok2 {
			continue
		}
		grid[liability][credit] = grid[liability][credit].Add(amt.Dec(normalize.Rounded))
	}
	for i, code := range []string{"41", "42", "43", "44"} {
		key := paymentKey(reverse, code)
		g := grid[i]
		out[key] = append(out[key], r.taxRow(g[0], g[1], g[2], g[3]))
	}
}

// transaction reports whether trancd marks the reverse-charge half of 6.1.
// ok is false for codes outside 6.1.
func transaction(trancd jsonx.Amount) (reverse, ok bool) {
	switch normalize.ParseNumber(trancd.Raw(), normalize.Raw).String() {
	case tranOther:
		return false, true
	case tranReverse:
		return true, true
	}
	return false, false
}
