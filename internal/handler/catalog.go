package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MarvinH10/asistencias-app/internal/auth"
	"github.com/MarvinH10/asistencias-app/internal/catalog"
	"github.com/MarvinH10/asistencias-app/internal/export"
)

// resource describes one admin entity: list/create/update plus the shared
// duplicate, bulk-delete and export utilities. The original admin panel
// drives every page through one generic controller; this is the same idea
// expressed as a route table.
type resource struct {
	name      string
	list      func(c *gin.Context) (any, error)
	create    func(c *gin.Context) (any, error)
	update    func(c *gin.Context, id int64) error
	remove    func(ctx context.Context, ids []int64) (int64, error)
	duplicate func(ctx context.Context, ids []int64) (int64, error)
	export    func(ctx context.Context) ([]string, [][]string, error)
}

type idsRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// MountAdmin wires every catalog resource plus the QR code singleton under
// the (already authenticated) group.
func (h *Handler) MountAdmin(g *gin.RouterGroup) {
	for _, res := range h.resources() {
		h.mount(g, res)
	}

	// The QR code create route is an upsert over the single active row.
	g.POST("/qr-codes", h.setQRCode)
}

func (h *Handler) mount(g *gin.RouterGroup, res resource) {
	base := "/" + res.name

	g.GET(base, func(c *gin.Context) {
		out, err := res.list(c)
		if err != nil {
			h.serverError(c, res.name+" list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{res.name: out})
	})

	if res.create != nil {
		g.POST(base, func(c *gin.Context) {
			out, err := res.create(c)
			if err != nil {
				// bind errors already answered
				if !c.Writer.Written() {
					h.serverError(c, res.name+" create", err)
				}
				return
			}
			c.JSON(http.StatusCreated, out)
		})
	}

	if res.update != nil {
		g.PUT(base+"/:id", func(c *gin.Context) {
			id, err := strconv.ParseInt(c.Param("id"), 10, 64)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "id no válido"})
				return
			}
			if err := res.update(c, id); err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "registro no encontrado"})
					return
				}
				if !c.Writer.Written() {
					h.serverError(c, res.name+" update", err)
				}
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	}

	g.DELETE(base+"/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id no válido"})
			return
		}
		n, err := res.remove(c.Request.Context(), []int64{id})
		if err != nil {
			h.serverError(c, res.name+" delete", err)
			return
		}
		if n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "registro no encontrado"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	g.POST(base+"/bulk-delete", func(c *gin.Context) {
		var req idsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		n, err := res.remove(c.Request.Context(), req.IDs)
		if err != nil {
			h.serverError(c, res.name+" bulk delete", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "deleted": n})
	})

	if res.duplicate != nil {
		g.POST(base+"/duplicate", func(c *gin.Context) {
			var req idsRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			n, err := res.duplicate(c.Request.Context(), req.IDs)
			if err != nil {
				h.serverError(c, res.name+" duplicate", err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "duplicated": n})
		})
	}

	g.GET(base+"/export", func(c *gin.Context) {
		header, rows, err := res.export(c.Request.Context())
		if err != nil {
			h.serverError(c, res.name+" export", err)
			return
		}
		export.Download(c, res.name, header, rows)
	})
}

func (h *Handler) serverError(c *gin.Context, op string, err error) {
	log.Printf("%s failed: %v", op, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "error interno"})
}

// bindJSON answers 400 itself and reports success to the caller.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

var errBadInput = errors.New("bad input")

func boolOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func parseDatePtr(c *gin.Context, field, value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": field + " debe tener formato YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}

// ---------- per-entity inputs ----------

type companyInput struct {
	RazonSocial string `json:"razon_social" binding:"required"`
	RUC         string `json:"ruc" binding:"required"`
	Estado      *bool  `json:"estado"`
}

type departmentInput struct {
	CompanyID   int64   `json:"company_id" binding:"required"`
	ParentID    *int64  `json:"parent_id"`
	Nombre      string  `json:"nombre" binding:"required"`
	Codigo      string  `json:"codigo" binding:"required"`
	Direccion   *string `json:"direccion"`
	Descripcion *string `json:"descripcion"`
	Estado      *bool   `json:"estado"`
}

type positionInput struct {
	CompanyID    *int64  `json:"company_id"`
	DepartmentID *int64  `json:"department_id"`
	ParentID     *int64  `json:"parent_id"`
	Nombre       string  `json:"nombre" binding:"required"`
	Descripcion  *string `json:"descripcion"`
	Estado       *bool   `json:"estado"`
}

type userInput struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password"`
	QRCodeID        *int64  `json:"qr_code_id"`
	CompanyID       int64   `json:"company_id" binding:"required"`
	DepartmentID    *int64  `json:"department_id"`
	PositionID      *int64  `json:"position_id"`
	DNI             string  `json:"dni" binding:"required,len=8,numeric"`
	DeviceUID       *string `json:"device_uid"`
	FechaIngreso    string  `json:"fecha_ingreso" binding:"required"`
	FechaRetiro     string  `json:"fecha_retiro"`
	FechaCumpleanos string  `json:"fecha_cumpleanos"`
	Estado          *bool   `json:"estado"`
}

type shiftInput struct {
	Nombre     string  `json:"nombre" binding:"required"`
	HoraInicio string  `json:"hora_inicio" binding:"required"`
	HoraFin    string  `json:"hora_fin" binding:"required"`
	CreadoPor  int64   `json:"creado_por" binding:"required"`
	Estado     *bool   `json:"estado"`
	UserIDs    []int64 `json:"user_ids"`
}

type holidayInput struct {
	Fecha       string  `json:"fecha" binding:"required"`
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion *string `json:"descripcion"`
	Recurrente  bool    `json:"recurrente"`
	Estado      *bool   `json:"estado"`
}

type methodInput struct {
	Clave       string  `json:"clave" binding:"required"`
	Nombre      string  `json:"nombre" binding:"required"`
	Descripcion *string `json:"descripcion"`
	Estado      *bool   `json:"estado"`
}

type recordInput struct {
	UserID    int64   `json:"user_id" binding:"required"`
	MethodID  int64   `json:"attendance_method_id" binding:"required"`
	Timestamp string  `json:"timestamp" binding:"required"`
	IPAddress *string `json:"ip_address"`
	QRToken   *string `json:"qr_token"`
	Latitude  *string `json:"latitude"`
	Longitude *string `json:"longitude"`
	Status    string  `json:"status" binding:"required,oneof=Entrada Salida"`
	Notas     *string `json:"notas"`
	Estado    *bool   `json:"estado"`
}

type qrCodeInput struct {
	QRCode string `json:"qr_code" binding:"required,max=255"`
}

// setQRCode upserts the singleton active QR code.
func (h *Handler) setQRCode(c *gin.Context) {
	var req qrCodeInput
	if !bindJSON(c, &req) {
		return
	}
	code, created, err := h.catalog.SetCurrentQRCode(c.Request.Context(), req.QRCode)
	if err != nil {
		h.serverError(c, "qr-codes upsert", err)
		return
	}
	msg := "Código QR actualizado correctamente."
	status := http.StatusOK
	if created {
		msg = "Código QR creado correctamente."
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"success": true, "message": msg, "qr_code": code})
}

func (h *Handler) resources() []resource {
	cat := h.catalog
	return []resource{
		{
			name: "companies",
			list: func(c *gin.Context) (any, error) { return cat.ListCompanies(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in companyInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				return cat.CreateCompany(c.Request.Context(), catalog.Company{
					RazonSocial: in.RazonSocial, RUC: in.RUC, Estado: boolOrTrue(in.Estado),
				})
			},
			update: func(c *gin.Context, id int64) error {
				var in companyInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				return cat.UpdateCompany(c.Request.Context(), id, catalog.Company{
					RazonSocial: in.RazonSocial, RUC: in.RUC, Estado: boolOrTrue(in.Estado),
				})
			},
			remove:    cat.DeleteCompanies,
			duplicate: cat.DuplicateCompanies,
			export:    cat.ExportCompanies,
		},
		{
			name: "departments",
			list: func(c *gin.Context) (any, error) { return cat.ListDepartments(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in departmentInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				return cat.CreateDepartment(c.Request.Context(), departmentFromInput(in))
			},
			update: func(c *gin.Context, id int64) error {
				var in departmentInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				return cat.UpdateDepartment(c.Request.Context(), id, departmentFromInput(in))
			},
			remove:    cat.DeleteDepartments,
			duplicate: cat.DuplicateDepartments,
			export:    cat.ExportDepartments,
		},
		{
			name: "positions",
			list: func(c *gin.Context) (any, error) { return cat.ListPositions(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in positionInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				return cat.CreatePosition(c.Request.Context(), positionFromInput(in))
			},
			update: func(c *gin.Context, id int64) error {
				var in positionInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				return cat.UpdatePosition(c.Request.Context(), id, positionFromInput(in))
			},
			remove:    cat.DeletePositions,
			duplicate: cat.DuplicatePositions,
			export:    cat.ExportPositions,
		},
		{
			name: "users",
			list: func(c *gin.Context) (any, error) { return cat.ListUsers(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				u, ok := h.userFromInput(c, true)
				if !ok {
					return nil, errBadInput
				}
				return cat.CreateUser(c.Request.Context(), u)
			},
			update: func(c *gin.Context, id int64) error {
				u, ok := h.userFromInput(c, false)
				if !ok {
					return errBadInput
				}
				return cat.UpdateUser(c.Request.Context(), id, u)
			},
			remove:    cat.DeleteUsers,
			duplicate: cat.DuplicateUsers,
			export:    cat.ExportUsers,
		},
		{
			name: "shifts",
			list: func(c *gin.Context) (any, error) { return cat.ListShifts(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in shiftInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				return cat.CreateShift(c.Request.Context(), shiftFromInput(in))
			},
			update: func(c *gin.Context, id int64) error {
				var in shiftInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				return cat.UpdateShift(c.Request.Context(), id, shiftFromInput(in))
			},
			remove:    cat.DeleteShifts,
			duplicate: cat.DuplicateShifts,
			export:    cat.ExportShifts,
		},
		{
			name: "holidays",
			list: func(c *gin.Context) (any, error) { return cat.ListHolidays(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in holidayInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				hol, ok := holidayFromInput(c, in)
				if !ok {
					return nil, errBadInput
				}
				return cat.CreateHoliday(c.Request.Context(), hol)
			},
			update: func(c *gin.Context, id int64) error {
				var in holidayInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				hol, ok := holidayFromInput(c, in)
				if !ok {
					return errBadInput
				}
				return cat.UpdateHoliday(c.Request.Context(), id, hol)
			},
			remove:    cat.DeleteHolidays,
			duplicate: cat.DuplicateHolidays,
			export:    cat.ExportHolidays,
		},
		{
			name: "attendance-methods",
			list: func(c *gin.Context) (any, error) { return cat.ListMethods(c.Request.Context()) },
			create: func(c *gin.Context) (any, error) {
				var in methodInput
				if !bindJSON(c, &in) {
					return nil, errBadInput
				}
				return cat.CreateMethod(c.Request.Context(), catalog.AttendanceMethod{
					Clave: in.Clave, Nombre: in.Nombre, Descripcion: in.Descripcion, Estado: boolOrTrue(in.Estado),
				})
			},
			update: func(c *gin.Context, id int64) error {
				var in methodInput
				if !bindJSON(c, &in) {
					return errBadInput
				}
				return cat.UpdateMethod(c.Request.Context(), id, catalog.AttendanceMethod{
					Clave: in.Clave, Nombre: in.Nombre, Descripcion: in.Descripcion, Estado: boolOrTrue(in.Estado),
				})
			},
			remove:    cat.DeleteMethods,
			duplicate: cat.DuplicateMethods,
			export:    cat.ExportMethods,
		},
		{
			name: "attendance-records",
			list: func(c *gin.Context) (any, error) {
				userID, _ := strconv.ParseInt(c.Query("user_id"), 10, 64)
				limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
				offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
				return cat.ListRecords(c.Request.Context(), userID, limit, offset)
			},
			create: func(c *gin.Context) (any, error) {
				in, ok := recordFromInput(c)
				if !ok {
					return nil, errBadInput
				}
				id, err := cat.CreateRecord(c.Request.Context(), in)
				if err != nil {
					return nil, err
				}
				return gin.H{"id": id}, nil
			},
			update: func(c *gin.Context, id int64) error {
				in, ok := recordFromInput(c)
				if !ok {
					return errBadInput
				}
				return cat.UpdateRecord(c.Request.Context(), id, in)
			},
			remove:    cat.DeleteRecords,
			duplicate: cat.DuplicateRecords,
			export:    cat.ExportRecords,
		},
		{
			name: "qr-codes",
			list: func(c *gin.Context) (any, error) {
				current, err := cat.CurrentQRCode(c.Request.Context())
				if err != nil {
					return nil, err
				}
				all, err := cat.ListQRCodes(c.Request.Context())
				if err != nil {
					return nil, err
				}
				return gin.H{"current": current, "all": all}, nil
			},
			remove:    cat.DeleteQRCodes,
			duplicate: cat.DuplicateQRCodes,
			export:    cat.ExportQRCodes,
		},
	}
}

func departmentFromInput(in departmentInput) catalog.Department {
	return catalog.Department{
		CompanyID: in.CompanyID, ParentID: in.ParentID, Nombre: in.Nombre, Codigo: in.Codigo,
		Direccion: in.Direccion, Descripcion: in.Descripcion, Estado: boolOrTrue(in.Estado),
	}
}

func positionFromInput(in positionInput) catalog.Position {
	return catalog.Position{
		CompanyID: in.CompanyID, DepartmentID: in.DepartmentID, ParentID: in.ParentID,
		Nombre: in.Nombre, Descripcion: in.Descripcion, Estado: boolOrTrue(in.Estado),
	}
}

func shiftFromInput(in shiftInput) catalog.Shift {
	return catalog.Shift{
		Nombre: in.Nombre, HoraInicio: in.HoraInicio, HoraFin: in.HoraFin,
		CreadoPor: in.CreadoPor, Estado: boolOrTrue(in.Estado), UserIDs: in.UserIDs,
	}
}

func holidayFromInput(c *gin.Context, in holidayInput) (catalog.Holiday, bool) {
	fecha, ok := parseDatePtr(c, "fecha", in.Fecha)
	if !ok || fecha == nil {
		if ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fecha es obligatoria"})
		}
		return catalog.Holiday{}, false
	}
	return catalog.Holiday{
		Fecha: *fecha, Nombre: in.Nombre, Descripcion: in.Descripcion,
		Recurrente: in.Recurrente, Estado: boolOrTrue(in.Estado),
	}, true
}

// userFromInput binds and converts a user payload. Passwords are required on
// create, optional on update, and always stored hashed.
func (h *Handler) userFromInput(c *gin.Context, requirePassword bool) (catalog.User, bool) {
	var in userInput
	if !bindJSON(c, &in) {
		return catalog.User{}, false
	}
	if requirePassword && len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "la contraseña debe tener al menos 8 caracteres"})
		return catalog.User{}, false
	}
	if in.Password != "" && len(in.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "la contraseña debe tener al menos 8 caracteres"})
		return catalog.User{}, false
	}

	ingreso, ok := parseDatePtr(c, "fecha_ingreso", in.FechaIngreso)
	if !ok {
		return catalog.User{}, false
	}
	retiro, ok := parseDatePtr(c, "fecha_retiro", in.FechaRetiro)
	if !ok {
		return catalog.User{}, false
	}
	cumple, ok := parseDatePtr(c, "fecha_cumpleanos", in.FechaCumpleanos)
	if !ok {
		return catalog.User{}, false
	}

	hashed := ""
	if in.Password != "" {
		var err error
		hashed, err = auth.HashPassword(in.Password)
		if err != nil {
			h.serverError(c, "hash password", err)
			return catalog.User{}, false
		}
	}

	return catalog.User{
		Name: in.Name, Email: in.Email, Password: hashed,
		QRCodeID: in.QRCodeID, CompanyID: in.CompanyID,
		DepartmentID: in.DepartmentID, PositionID: in.PositionID,
		DNI: in.DNI, DeviceUID: in.DeviceUID,
		FechaIngreso: ingreso, FechaRetiro: retiro, FechaCumpleanos: cumple,
		Estado: boolOrTrue(in.Estado),
	}, true
}

func recordFromInput(c *gin.Context) (catalog.AttendanceRecordInput, bool) {
	var in recordInput
	if !bindJSON(c, &in) {
		return catalog.AttendanceRecordInput{}, false
	}
	ts, err := time.Parse(time.RFC3339, in.Timestamp)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timestamp debe tener formato RFC3339"})
		return catalog.AttendanceRecordInput{}, false
	}
	return catalog.AttendanceRecordInput{
		UserID: in.UserID, MethodID: in.MethodID, Timestamp: ts,
		IPAddress: in.IPAddress, QRToken: in.QRToken,
		Latitude: in.Latitude, Longitude: in.Longitude,
		Status: in.Status, Notas: in.Notas, Estado: boolOrTrue(in.Estado),
	}, true
}
