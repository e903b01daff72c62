package patient

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clinicware/ambulatorio-scheduling/internal/agenda"
)

var bothSites = []agenda.Site{agenda.SitePTACentro, agenda.SiteVillaGinestre}

func newTestService(repo *mockRepository) *Service {
	return NewService(repo, zap.NewNop())
}

func creatingRepo(created *[]Patient) *mockRepository {
	return &mockRepository{
		CreateFunc: func(ctx context.Context, p Patient) (*Patient, error) {
			p.ID = uuid.New()
			if created != nil {
				*created = append(*created, p)
			}
			return &p, nil
		},
	}
}

func strPtr(s string) *string { return &s }

func TestGenerateCode(t *testing.T) {
	codeShape := regexp.MustCompile(`^[a-z][0-9]{3}[a-z]$`)

	assert.Regexp(t, codeShape, generateCode("Russo"))
	assert.Regexp(t, codeShape, generateCode("bianchi"))

	// Non-alphabetic initials fall back to x.
	assert.Equal(t, byte('x'), generateCode("")[0])
	assert.Equal(t, byte('x'), generateCode("123")[0])
}

func TestCreate(t *testing.T) {
	t.Run("creates an in-care patient with a roster code", func(t *testing.T) {
		var created []Patient
		svc := newTestService(creatingRepo(&created))

		p, err := svc.Create(context.Background(), CreateRequest{
			Nome: "Maria", Cognome: "Russo",
			Tipo: TypePICC, Ambulatorio: agenda.SitePTACentro,
		})
		require.NoError(t, err)

		assert.Equal(t, StatusInCare, p.Status)
		assert.Regexp(t, `^r[0-9]{3}[a-z]$`, p.CodicePaziente)
	})

	t.Run("retries the code until unique", func(t *testing.T) {
		calls := 0
		repo := creatingRepo(nil)
		repo.CodeExistsFunc = func(ctx context.Context, code string) (bool, error) {
			calls++
			return calls < 3, nil
		}
		svc := newTestService(repo)

		_, err := svc.Create(context.Background(), CreateRequest{
			Nome: "Maria", Cognome: "Russo",
			Tipo: TypePICC, Ambulatorio: agenda.SitePTACentro,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("villa delle ginestre accepts only PICC", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		for _, tipo := range []Type{TypeMED, TypePICCMED} {
			_, err := svc.Create(context.Background(), CreateRequest{
				Nome: "Gino", Cognome: "Verdi",
				Tipo: tipo, Ambulatorio: agenda.SiteVillaGinestre,
			})
			assert.ErrorIs(t, err, ErrVillaGinestrePICCOnly, tipo)
		}

		_, err := svc.Create(context.Background(), CreateRequest{
			Nome: "Gino", Cognome: "Verdi",
			Tipo: TypePICC, Ambulatorio: agenda.SiteVillaGinestre,
		})
		assert.NotErrorIs(t, err, ErrVillaGinestrePICCOnly)
	})

	t.Run("rejects bad vocabulary", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		_, err := svc.Create(context.Background(), CreateRequest{
			Tipo: TypePICC, Ambulatorio: "altrove",
		})
		assert.ErrorIs(t, err, agenda.ErrInvalidSite)

		_, err = svc.Create(context.Background(), CreateRequest{
			Tipo: "CHIR", Ambulatorio: agenda.SitePTACentro,
		})
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestUpdateDetails(t *testing.T) {
	id := uuid.New()
	inCare := func() *Patient {
		return &Patient{ID: id, Nome: "Maria", Cognome: "Russo", Tipo: TypePICC,
			Ambulatorio: agenda.SitePTACentro, Status: StatusInCare}
	}

	repoEchoing := func(got *Update) *mockRepository {
		return &mockRepository{
			GetByIDFunc: func(ctx context.Context, _ uuid.UUID) (*Patient, error) {
				return inCare(), nil
			},
			UpdateFunc: func(ctx context.Context, _ uuid.UUID, upd Update) (*Patient, error) {
				*got = upd
				return inCare(), nil
			},
		}
	}

	t.Run("discharge requires a reason and stamps the date", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		status := StatusDischarged
		_, err := svc.UpdateDetails(context.Background(), id, Update{Status: &status})
		assert.ErrorIs(t, err, ErrDischargeReasonRequired)

		var got Update
		svc = newTestService(repoEchoing(&got))
		reason := DischargeHealed
		_, err = svc.UpdateDetails(context.Background(), id, Update{Status: &status, DischargeReason: &reason})
		require.NoError(t, err)
		require.NotNil(t, got.DataDimissione)
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, *got.DataDimissione)
	})

	t.Run("suspension requires a note", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		status := StatusSuspended
		_, err := svc.UpdateDetails(context.Background(), id, Update{Status: &status})
		assert.ErrorIs(t, err, ErrSuspendNotesRequired)

		blank := "   "
		_, err = svc.UpdateDetails(context.Background(), id, Update{Status: &status, SuspendNotes: &blank})
		assert.ErrorIs(t, err, ErrSuspendNotesRequired)
	})

	t.Run("back to in-care needs no metadata", func(t *testing.T) {
		var got Update
		svc := newTestService(repoEchoing(&got))

		status := StatusInCare
		_, err := svc.UpdateDetails(context.Background(), id, Update{Status: &status})
		assert.NoError(t, err)
	})

	t.Run("rejects bad vocabulary", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		badStatus := Status("archiviato")
		_, err := svc.UpdateDetails(context.Background(), id, Update{Status: &badStatus})
		assert.ErrorIs(t, err, ErrInvalidStatus)

		badType := Type("CHIR")
		_, err = svc.UpdateDetails(context.Background(), id, Update{Tipo: &badType})
		assert.ErrorIs(t, err, ErrInvalidType)
	})
}

func TestCreateBatch(t *testing.T) {
	t.Run("collects per-item errors without aborting", func(t *testing.T) {
		var created []Patient
		svc := newTestService(creatingRepo(&created))

		res := svc.CreateBatch(context.Background(), []CreateRequest{
			{Nome: "Maria", Cognome: "Russo", Tipo: TypePICC, Ambulatorio: agenda.SitePTACentro},
			{Nome: "Gino", Cognome: "Verdi", Tipo: TypeMED, Ambulatorio: agenda.SiteVillaGinestre}, // villa rule
			{Nome: "Anna", Cognome: "Bianchi", Tipo: TypeMED, Ambulatorio: agenda.SitePTACentro},
		}, bothSites, "admin")

		assert.Len(t, res.Created, 2)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "Verdi Gino", res.Errors[0].Ref)
		assert.Equal(t, ErrVillaGinestrePICCOnly.Error(), res.Errors[0].Error)
	})

	t.Run("enforces site access per item", func(t *testing.T) {
		var created []Patient
		svc := newTestService(creatingRepo(&created))

		res := svc.CreateBatch(context.Background(), []CreateRequest{
			{Nome: "Maria", Cognome: "Russo", Tipo: TypePICC, Ambulatorio: agenda.SiteVillaGinestre},
		}, []agenda.Site{agenda.SitePTACentro}, "admin")

		assert.Empty(t, res.Created)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, ErrSiteNotAllowed.Error(), res.Errors[0].Error)
	})

	t.Run("records implants for PICC-eligible items", func(t *testing.T) {
		var implants []Implant
		repo := creatingRepo(nil)
		repo.CreateImplantFunc = func(ctx context.Context, im Implant) (*Implant, error) {
			im.ID = uuid.New()
			implants = append(implants, im)
			return &im, nil
		}
		svc := newTestService(repo)

		catheter := CatheterMidline
		res := svc.CreateBatch(context.Background(), []CreateRequest{
			{Nome: "Maria", Cognome: "Russo", Tipo: TypePICC, Ambulatorio: agenda.SitePTACentro,
				TipoImpianto: &catheter, DataInserimentoImpianto: strPtr("2026-08-20")},
			{Nome: "Anna", Cognome: "Bianchi", Tipo: TypeMED, Ambulatorio: agenda.SitePTACentro,
				TipoImpianto: &catheter, DataInserimentoImpianto: strPtr("2026-08-20")}, // not PICC-eligible, implant skipped
		}, bothSites, "dott.ssa Neri")

		assert.Len(t, res.Created, 2)
		assert.Equal(t, 1, res.ImplantsCreated)
		require.Len(t, implants, 1)
		assert.Equal(t, CatheterMidline, implants[0].TipoCatetere)
		assert.Equal(t, "dott.ssa Neri", implants[0].Operatore)
	})

	t.Run("unknown catheter type fails the item before creating anything", func(t *testing.T) {
		var created []Patient
		svc := newTestService(creatingRepo(&created))

		catheter := CatheterType("groshong")
		res := svc.CreateBatch(context.Background(), []CreateRequest{
			{Nome: "Maria", Cognome: "Russo", Tipo: TypePICC, Ambulatorio: agenda.SitePTACentro,
				TipoImpianto: &catheter, DataInserimentoImpianto: strPtr("2026-08-20")},
		}, bothSites, "admin")

		assert.Empty(t, res.Created)
		assert.Empty(t, created)
		assert.Zero(t, res.ImplantsCreated)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "Russo Maria", res.Errors[0].Ref)
		assert.Equal(t, ErrInvalidCatheterType.Error(), res.Errors[0].Error)
	})
}

func TestChangeStatusBatch(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	roster := map[uuid.UUID]*Patient{
		ids[0]: {ID: ids[0], Nome: "Maria", Cognome: "Russo", Ambulatorio: agenda.SitePTACentro, Status: StatusInCare},
		ids[1]: {ID: ids[1], Nome: "Gino", Cognome: "Verdi", Ambulatorio: agenda.SiteVillaGinestre, Status: StatusInCare},
	}
	lookupRepo := func() *mockRepository {
		return &mockRepository{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Patient, error) {
				if p, ok := roster[id]; ok {
					return p, nil
				}
				return nil, ErrPatientNotFound
			},
			UpdateFunc: func(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
				return roster[id], nil
			},
		}
	}

	t.Run("validates metadata up-front", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		_, err := svc.ChangeStatusBatch(context.Background(), StatusChangeRequest{
			PatientIDs: ids, Status: StatusDischarged,
		}, bothSites)
		assert.ErrorIs(t, err, ErrDischargeReasonRequired)

		_, err = svc.ChangeStatusBatch(context.Background(), StatusChangeRequest{
			PatientIDs: ids, Status: StatusSuspended,
		}, bothSites)
		assert.ErrorIs(t, err, ErrSuspendNotesRequired)
	})

	t.Run("updates every accessible patient", func(t *testing.T) {
		svc := newTestService(lookupRepo())

		reason := DischargeADI
		res, err := svc.ChangeStatusBatch(context.Background(), StatusChangeRequest{
			PatientIDs: append(ids, uuid.New()), // last one unknown
			Status:     StatusDischarged, DischargeReason: &reason,
		}, bothSites)
		require.NoError(t, err)

		assert.Len(t, res.Updated, 2)
		assert.Len(t, res.Errors, 1)
	})

	t.Run("skips patients at inaccessible sites", func(t *testing.T) {
		svc := newTestService(lookupRepo())

		note := "ricovero temporaneo"
		res, err := svc.ChangeStatusBatch(context.Background(), StatusChangeRequest{
			PatientIDs: ids, Status: StatusSuspended, SuspendNotes: &note,
		}, []agenda.Site{agenda.SitePTACentro})
		require.NoError(t, err)

		require.Len(t, res.Updated, 1)
		assert.Equal(t, ids[0], res.Updated[0].ID)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, ErrSiteNotAllowed.Error(), res.Errors[0].Error)
	})
}

func TestDeleteBatch(t *testing.T) {
	id := uuid.New()
	repo := &mockRepository{
		GetByIDFunc: func(ctx context.Context, got uuid.UUID) (*Patient, error) {
			if got == id {
				return &Patient{ID: id, Nome: "Maria", Cognome: "Russo", Ambulatorio: agenda.SitePTACentro}, nil
			}
			return nil, ErrPatientNotFound
		},
		DeleteFunc: func(ctx context.Context, got uuid.UUID) error { return nil },
	}
	svc := newTestService(repo)

	res := svc.DeleteBatch(context.Background(), []uuid.UUID{id, uuid.New()}, bothSites)

	require.Len(t, res.Deleted, 1)
	assert.Equal(t, "Russo Maria", res.Deleted[0].Nome)
	assert.Len(t, res.Errors, 1)
}

func TestSearchPICC(t *testing.T) {
	t.Run("defaults to every accessible site", func(t *testing.T) {
		var gotSites []agenda.Site
		repo := &mockRepository{
			SearchPICCFunc: func(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error) {
				gotSites = sites
				assert.Equal(t, searchLimit, limit)
				return nil, nil
			},
		}
		svc := newTestService(repo)

		_, err := svc.SearchPICC(context.Background(), "rus", nil, bothSites)
		require.NoError(t, err)
		assert.Equal(t, bothSites, gotSites)
	})

	t.Run("narrows to one allowed site", func(t *testing.T) {
		var gotSites []agenda.Site
		repo := &mockRepository{
			SearchPICCFunc: func(ctx context.Context, sites []agenda.Site, q string, limit int) ([]Patient, error) {
				gotSites = sites
				return nil, nil
			},
		}
		svc := newTestService(repo)

		site := agenda.SiteVillaGinestre
		_, err := svc.SearchPICC(context.Background(), "rus", &site, bothSites)
		require.NoError(t, err)
		assert.Equal(t, []agenda.Site{site}, gotSites)
	})

	t.Run("refuses a site outside the grant", func(t *testing.T) {
		svc := newTestService(&mockRepository{})

		site := agenda.SiteVillaGinestre
		_, err := svc.SearchPICC(context.Background(), "rus", &site, []agenda.Site{agenda.SitePTACentro})
		assert.ErrorIs(t, err, ErrSiteNotAllowed)
	})
}

func TestCreateImplantsBatch(t *testing.T) {
	piccID := uuid.New()
	medID := uuid.New()
	roster := map[uuid.UUID]*Patient{
		piccID: {ID: piccID, Tipo: TypePICCMED, Ambulatorio: agenda.SitePTACentro},
		medID:  {ID: medID, Tipo: TypeMED, Ambulatorio: agenda.SitePTACentro},
	}

	repo := &mockRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*Patient, error) {
			if p, ok := roster[id]; ok {
				return p, nil
			}
			return nil, ErrPatientNotFound
		},
		CreateImplantFunc: func(ctx context.Context, im Implant) (*Implant, error) {
			im.ID = uuid.New()
			return &im, nil
		},
	}
	svc := newTestService(repo)

	res := svc.CreateImplantsBatch(context.Background(), []ImplantRequest{
		{PatientID: piccID, TipoCatetere: CatheterPICC, DataImpianto: "2026-08-20"},
		{PatientID: medID, TipoCatetere: CatheterPICC, DataImpianto: "2026-08-20"},
		{PatientID: piccID, TipoCatetere: "groshong", DataImpianto: "2026-08-20"},
		{PatientID: piccID},
	}, bothSites, "dott.ssa Neri")

	require.Len(t, res.Created, 1)
	assert.Equal(t, piccID, res.Created[0].PatientID)
	assert.Equal(t, "dott.ssa Neri", res.Created[0].Operatore)

	require.Len(t, res.Errors, 3)
	assert.Equal(t, ErrNotPICCPatient.Error(), res.Errors[0].Error)
	assert.Equal(t, ErrInvalidCatheterType.Error(), res.Errors[1].Error)
}
